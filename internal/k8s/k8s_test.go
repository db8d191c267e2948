package k8s_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mwengren/kuberr/internal/k8s"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	v1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/kubernetes/fake"
	k8stesting "k8s.io/client-go/testing"
)

const kubeconfigWithContext = `apiVersion: v1
kind: Config
clusters:
- name: test
  cluster:
    server: https://127.0.0.1:6443
users:
- name: test
  user:
    token: abc
contexts:
- name: test
  context:
    cluster: test
    user: test
current-context: test
`

const kubeconfigWithoutContext = `apiVersion: v1
kind: Config
clusters: []
users: []
contexts: []
`

func writeKubeconfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestGivenKubeconfigWithContextWhenNewThenClientCreated(t *testing.T) {
	client, err := k8s.New(&k8s.Options{
		Namespace:  "demo",
		Kubeconfig: writeKubeconfig(t, kubeconfigWithContext),
	})
	require.NoError(t, err)

	assert.Equal(t, "demo", client.Namespace)
	assert.Equal(t, `kubeconfig context "test"`, client.Source)
}

func TestGivenKubeconfigWithoutContextWhenNewThenErrNoContexts(t *testing.T) {
	_, err := k8s.New(&k8s.Options{
		Namespace:  "demo",
		Kubeconfig: writeKubeconfig(t, kubeconfigWithoutContext),
	})
	assert.ErrorIs(t, err, k8s.ErrNoContexts)
}

func TestGivenMissingKubeconfigWhenNewThenError(t *testing.T) {
	_, err := k8s.New(&k8s.Options{
		Namespace:  "demo",
		Kubeconfig: filepath.Join(t.TempDir(), "missing"),
	})
	assert.Error(t, err)
}

func newFakeK8s(objects ...runtime.Object) (*k8s.RealK8s, *fake.Clientset) {
	clientset := fake.NewSimpleClientset(objects...)

	return &k8s.RealK8s{
		Namespace: "demo",
		Client:    clientset,
	}, clientset
}

func TestWhenCreateConfigMapThenStoredInNamespace(t *testing.T) {
	client, clientset := newFakeK8s()

	_, err := client.CreateConfigMap(context.Background(), &v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo"},
		Data:       map[string]string{"setup.xml": "<erddapSetup/>"},
	})
	require.NoError(t, err)

	stored, err := clientset.CoreV1().ConfigMaps("demo").Get(context.Background(), "content-demo", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "<erddapSetup/>", stored.Data["setup.xml"])
}

func TestGivenExistingConfigMapWhenCreateThenAlreadyExists(t *testing.T) {
	client, _ := newFakeK8s(&v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo", Namespace: "demo"},
	})

	_, err := client.CreateConfigMap(context.Background(), &v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo"},
	})
	require.Error(t, err)
	assert.True(t, apierrors.IsAlreadyExists(err))
}

func TestGivenMissingConfigMapWhenGetThenNotFound(t *testing.T) {
	client, _ := newFakeK8s()

	_, err := client.GetConfigMap(context.Background(), "content-demo")
	require.Error(t, err)
	assert.True(t, apierrors.IsNotFound(err))
}

func TestWhenReplaceConfigMapThenDataUpdated(t *testing.T) {
	client, clientset := newFakeK8s(&v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo", Namespace: "demo", ResourceVersion: "1"},
		Data:       map[string]string{"setup.xml": "old"},
	})

	configMap, err := client.GetConfigMap(context.Background(), "content-demo")
	require.NoError(t, err)

	configMap.Data["setup.xml"] = "new"

	_, err = client.ReplaceConfigMap(context.Background(), configMap)
	require.NoError(t, err)

	stored, err := clientset.CoreV1().ConfigMaps("demo").Get(context.Background(), "content-demo", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "new", stored.Data["setup.xml"])
}

func TestGivenNoResourceVersionWhenReplaceConfigMapThenRefused(t *testing.T) {
	client, clientset := newFakeK8s()

	_, err := client.ReplaceConfigMap(context.Background(), &v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo"},
	})
	assert.ErrorIs(t, err, k8s.ErrMissingResourceVersion)
	assert.Empty(t, clientset.Actions())
}

func TestGivenConcurrentWriterWhenReplaceConfigMapThenConflict(t *testing.T) {
	client, clientset := newFakeK8s()
	clientset.PrependReactor("update", "configmaps", func(k8stesting.Action) (bool, runtime.Object, error) {
		return true, nil, apierrors.NewConflict(
			schema.GroupResource{Resource: "configmaps"},
			"content-demo",
			errors.New("the object has been modified"),
		)
	})

	_, err := client.ReplaceConfigMap(context.Background(), &v1.ConfigMap{
		ObjectMeta: metav1.ObjectMeta{Name: "content-demo", ResourceVersion: "1"},
	})
	require.Error(t, err)
	assert.True(t, apierrors.IsConflict(err))
}

func TestWhenGetServiceThenReturned(t *testing.T) {
	client, _ := newFakeK8s(&v1.Service{
		ObjectMeta: metav1.ObjectMeta{Name: "release-name-demo-erddap-service", Namespace: "demo"},
		Spec:       v1.ServiceSpec{ClusterIP: "10.0.0.5"},
	})

	service, err := client.GetService(context.Background(), "release-name-demo-erddap-service")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.5", service.Spec.ClusterIP)
}
