package integration_test

import (
	"context"
	"path/filepath"
	"testing"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"
)

func Kubeconfig() string {
	return filepath.Join(homedir.HomeDir(), ".kube", "config")
}

func NewClientset(t *testing.T) *kubernetes.Clientset {
	t.Helper()

	config, err := clientcmd.BuildConfigFromFlags("", Kubeconfig())
	if err != nil {
		t.Fatalf("Failed to load kubeconfig: %v", err)
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		t.Fatalf("Failed to create Kubernetes client: %v", err)
	}

	return clientset
}

func PrintConfigMap(t *testing.T, clientset kubernetes.Interface, namespace, name string) {
	configMap, err := clientset.CoreV1().ConfigMaps(namespace).Get(context.Background(), name, metav1.GetOptions{})
	if err != nil {
		t.Logf("Failed to get configmap %s: %v", name, err)
		return
	}

	t.Logf("---- ConfigMap %s ----", name)

	for key, value := range configMap.Data {
		t.Logf("%s:\n%s", key, value)
	}

	t.Logf("---- End of ConfigMap ----")
}
