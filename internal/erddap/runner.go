package erddap

import (
	"context"
	"errors"
	"fmt"

	"github.com/mwengren/kuberr/internal/baseurl"
	"github.com/mwengren/kuberr/internal/config"
	"github.com/mwengren/kuberr/internal/configmap"
	"github.com/mwengren/kuberr/internal/content"
	"github.com/mwengren/kuberr/internal/k8s"
	"github.com/mwengren/kuberr/internal/setupxml"
	"github.com/sirupsen/logrus"
	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"sigs.k8s.io/yaml"
)

const (
	SetupXMLKey    = "setup.xml"
	DatasetsXMLKey = "datasets.xml"
	ERDDAPCSSKey   = "erddapStart2.css"
)

// ErrMissingSetupXML is returned when the content ConfigMap has no setup.xml key.
var ErrMissingSetupXML = errors.New("configmap has no setup.xml entry")

type Runner struct {
	Config  *config.Config
	K8s     k8s.Client
	Fetcher content.Fetcher
	Log     *logrus.Entry
}

// CreateConfigMaps creates the content and images ConfigMaps from the
// templates of the configured ERDDAP version. A ConfigMap that cannot be
// created is logged and skipped; template fetch errors abort the action.
func (r *Runner) CreateConfigMaps(ctx context.Context) error {
	setup, err := r.Fetcher.Fetch(ctx, content.SetupXML)
	if err != nil {
		return fmt.Errorf("could not fetch setup.xml: %w", err)
	}

	datasets, err := r.Fetcher.Fetch(ctx, content.DatasetsXML)
	if err != nil {
		return fmt.Errorf("could not fetch datasets.xml: %w", err)
	}

	r.createConfigMap(ctx, r.Config.ContentConfigMapName(), configmap.MultiFile(map[string]string{
		SetupXMLKey:    setup,
		DatasetsXMLKey: datasets,
	}))

	css, err := r.Fetcher.Fetch(ctx, content.ERDDAPCSS)
	if err != nil {
		return fmt.Errorf("could not fetch erddapStart2.css: %w", err)
	}

	r.createConfigMap(ctx, r.Config.ImagesConfigMapName(), configmap.MultiFile(map[string]string{
		ERDDAPCSSKey: css,
	}))

	return nil
}

func (r *Runner) createConfigMap(ctx context.Context, name string, c configmap.Content) *v1.ConfigMap {
	cm, err := configmap.Build(&configmap.BuildOptions{
		Name:      name,
		Namespace: r.Config.Namespace(),
		AppName:   r.Config.AppName,
		Content:   c,
	})
	if err != nil {
		r.Log.Errorf("Could not build configmap %q: %v", name, err)
		return nil
	}

	created, err := r.K8s.CreateConfigMap(ctx, cm)
	if err != nil {
		if apierrors.IsAlreadyExists(err) {
			r.Log.Warnf("Configmap %q already exists in namespace %q, not creating it", name, cm.Namespace)
			return nil
		}

		r.Log.Errorf("Something went wrong creating configmap %q: %v", name, err)

		return nil
	}

	r.Log.Infof("Configmap %s created in namespace: %s", created.Name, created.Namespace)
	r.dump("configmap", created)

	return created
}

// UpdateSetupConfigMap points setup.xml at the address of the ERDDAP service
// and fills in the admin settings, then writes it back to the content ConfigMap.
func (r *Runner) UpdateSetupConfigMap(ctx context.Context) error {
	serviceName := r.Config.ServiceName()

	service, err := r.K8s.GetService(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("could not read service: %w", err)
	}

	r.dump("service", service)

	resolution, err := baseurl.New(r.Config.DomainName).Resolve(baseurl.SnapshotFromService(service))
	if err != nil {
		return fmt.Errorf("could not resolve base URL of service %q: %w", serviceName, err)
	}

	r.Log.Infof("base_url: %s (from %s)", resolution.Address, resolution.Source)

	name := r.Config.ContentConfigMapName()

	cm, err := r.K8s.GetConfigMap(ctx, name)
	if err != nil {
		return fmt.Errorf("could not read configmap: %w", err)
	}

	setup, ok := cm.Data[SetupXMLKey]
	if !ok {
		return fmt.Errorf("could not patch configmap %q: %w", name, ErrMissingSetupXML)
	}

	result, err := setupxml.Patch(setup, &setupxml.PatchOptions{
		BaseURL:       resolution.Address,
		TrailingSlash: r.Config.BaseURLTrailingSlash,
		Settings:      r.Config.Setup,
	})
	if err != nil {
		return fmt.Errorf("could not patch setup.xml: %w", err)
	}

	r.logChanges(result.Changes)

	cm.Data[SetupXMLKey] = result.Document

	_, err = r.K8s.ReplaceConfigMap(ctx, cm)
	if err != nil {
		if apierrors.IsConflict(err) {
			return fmt.Errorf("configmap %q was modified while it was being updated, run the action again: %w", name, err)
		}

		return fmt.Errorf("could not replace configmap: %w", err)
	}

	r.Log.Infof("Configmap %s updated in namespace: %s", name, r.Config.Namespace())

	return nil
}

// UpdateDatasetsConfigMap is accepted for compatibility with the Helm chart
// hooks and does nothing yet.
func (r *Runner) UpdateDatasetsConfigMap(context.Context) error {
	r.Log.Infof("Action %s has nothing to do", UpdateDatasetsConfigMap)
	return nil
}

func (r *Runner) logChanges(changes []setupxml.Change) {
	for _, change := range changes {
		before, after := change.Before, change.After
		if change.Secret {
			before, after = redact(before), redact(after)
		}

		entry := r.Log.WithField("element", change.Element)

		switch change.Element {
		case setupxml.BaseURLElement, setupxml.BigParentDirectoryElement:
			entry.Infof("%s before: %s, after: %s", change.Element, before, after)
		default:
			entry.Debugf("%s before: %q, after: %q", change.Element, before, after)
		}
	}
}

func redact(s string) string {
	if s == "" {
		return s
	}

	return "<redacted>"
}

func (r *Runner) dump(kind string, obj any) {
	if !r.Log.Logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}

	b, err := yaml.Marshal(obj)
	if err != nil {
		r.Log.Debugf("Could not render %s: %v", kind, err)
		return
	}

	r.Log.Debugf("%s:\n%s", kind, b)
}
