package configmap

import (
	"errors"
	"maps"

	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

const (
	AppLabelKey     = "app"
	AppLabelValue   = "erddap"
	AppNameLabelKey = "appName"
)

// ErrMissingName is returned by Build when no ConfigMap name is given.
var ErrMissingName = errors.New("a name is required to build a ConfigMap")

// Content is the payload of a ConfigMap: either one file stored under the
// ConfigMap's own name or a set of named files.
type Content interface {
	data(name string) map[string]string
}

type singleFile string

func (c singleFile) data(name string) map[string]string {
	return map[string]string{name: string(c)}
}

type multiFile map[string]string

func (c multiFile) data(string) map[string]string {
	return maps.Clone(map[string]string(c))
}

// SingleFile stores content under the key equal to the ConfigMap name.
func SingleFile(content string) Content {
	return singleFile(content)
}

// MultiFile stores each entry of files under its own key.
func MultiFile(files map[string]string) Content {
	return multiFile(files)
}

type BuildOptions struct {
	Name      string
	Namespace string
	AppName   string
	Content   Content
}

// Build returns the ConfigMap described by opts. It does not contact the cluster.
func Build(opts *BuildOptions) (*v1.ConfigMap, error) {
	if opts == nil || opts.Name == "" {
		return nil, ErrMissingName
	}

	data := map[string]string{}
	if opts.Content != nil {
		data = opts.Content.data(opts.Name)
	}

	return &v1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      opts.Name,
			Namespace: opts.Namespace,
			Labels:    Labels(opts.AppName),
		},
		Data: data,
	}, nil
}

// Labels are the labels put on every ConfigMap of an application.
func Labels(appName string) map[string]string {
	return map[string]string{
		AppLabelKey:     AppLabelValue,
		AppNameLabelKey: appName,
	}
}
