package k8s

import (
	"context"
	"errors"
	"fmt"
	"time"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

var (
	// ErrNoContexts is returned when the kubeconfig defines no context to use.
	ErrNoContexts = errors.New("cannot find any context in kube-config file")

	// ErrMissingResourceVersion is returned when a ConfigMap is replaced
	// without the resourceVersion it was read at.
	ErrMissingResourceVersion = errors.New("configmap has no resourceVersion")
)

// Client is the set of cluster operations the ERDDAP actions need.
type Client interface {
	CreateConfigMap(ctx context.Context, configMap *v1.ConfigMap) (*v1.ConfigMap, error)
	GetConfigMap(ctx context.Context, name string) (*v1.ConfigMap, error)
	ReplaceConfigMap(ctx context.Context, configMap *v1.ConfigMap) (*v1.ConfigMap, error)
	GetService(ctx context.Context, name string) (*v1.Service, error)
}

// RealK8s implements Client on top of a Kubernetes clientset, scoped to one namespace.
type RealK8s struct {
	Namespace string
	Client    kubernetes.Interface
	DryRun    bool
	// Source describes where the credentials came from.
	Source string
}

type Options struct {
	Namespace string
	// Kubeconfig is an explicit kubeconfig path. When set, in-cluster
	// credentials are not tried.
	Kubeconfig string
	Context    string
	DryRun     bool
	Timeout    time.Duration
}

// New creates a RealK8s using in-cluster credentials when available and a
// kubeconfig file otherwise.
func New(opts *Options) (*RealK8s, error) {
	config, source, err := restConfig(opts)
	if err != nil {
		return nil, err
	}

	if opts.Timeout > 0 {
		config.Timeout = opts.Timeout
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("error creating Kubernetes client: %w", err)
	}

	return &RealK8s{
		Namespace: opts.Namespace,
		Client:    client,
		DryRun:    opts.DryRun,
		Source:    source,
	}, nil
}

func restConfig(opts *Options) (*rest.Config, string, error) {
	if opts.Kubeconfig == "" {
		config, err := rest.InClusterConfig()
		if err == nil {
			return config, "in-cluster", nil
		}
	}

	rules := clientcmd.NewDefaultClientConfigLoadingRules()
	rules.ExplicitPath = opts.Kubeconfig
	overrides := &clientcmd.ConfigOverrides{CurrentContext: opts.Context}
	clientConfig := clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides)

	raw, err := clientConfig.RawConfig()
	if err != nil {
		return nil, "", fmt.Errorf("error loading kubeconfig: %w", err)
	}

	if len(raw.Contexts) == 0 {
		return nil, "", ErrNoContexts
	}

	config, err := clientConfig.ClientConfig()
	if err != nil {
		return nil, "", fmt.Errorf("error getting kubeconfig client config: %w", err)
	}

	current := raw.CurrentContext
	if opts.Context != "" {
		current = opts.Context
	}

	return config, fmt.Sprintf("kubeconfig context %q", current), nil
}

func (k *RealK8s) dryRun() []string {
	if k.DryRun {
		return []string{metav1.DryRunAll}
	}

	return nil
}

func (k *RealK8s) CreateConfigMap(ctx context.Context, configMap *v1.ConfigMap) (*v1.ConfigMap, error) {
	created, err := k.Client.CoreV1().ConfigMaps(k.Namespace).Create(ctx, configMap, metav1.CreateOptions{
		DryRun: k.dryRun(),
	})
	if err != nil {
		return nil, fmt.Errorf("error creating ConfigMap %q in namespace %q: %w", configMap.Name, k.Namespace, err)
	}

	return created, nil
}

func (k *RealK8s) GetConfigMap(ctx context.Context, name string) (*v1.ConfigMap, error) {
	configMap, err := k.Client.CoreV1().ConfigMaps(k.Namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("error getting ConfigMap %q in namespace %q: %w", name, k.Namespace, err)
	}

	return configMap, nil
}

// ReplaceConfigMap updates configMap in place. The resourceVersion it was read
// at is sent along, so the API server rejects the update with a Conflict if
// someone else changed the ConfigMap in between.
func (k *RealK8s) ReplaceConfigMap(ctx context.Context, configMap *v1.ConfigMap) (*v1.ConfigMap, error) {
	if configMap.ResourceVersion == "" {
		return nil, fmt.Errorf("error replacing ConfigMap %q: %w", configMap.Name, ErrMissingResourceVersion)
	}

	updated, err := k.Client.CoreV1().ConfigMaps(k.Namespace).Update(ctx, configMap, metav1.UpdateOptions{
		DryRun: k.dryRun(),
	})
	if err != nil {
		return nil, fmt.Errorf("error replacing ConfigMap %q in namespace %q: %w", configMap.Name, k.Namespace, err)
	}

	return updated, nil
}

func (k *RealK8s) GetService(ctx context.Context, name string) (*v1.Service, error) {
	service, err := k.Client.CoreV1().Services(k.Namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("error getting Service %q in namespace %q: %w", name, k.Namespace, err)
	}

	return service, nil
}
