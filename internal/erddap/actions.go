package erddap

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

type Action string

const (
	CreateConfigMaps        Action = "create_configmaps"
	UpdateSetupConfigMap    Action = "update_setup_configmap"
	UpdateDatasetsConfigMap Action = "update_datasets_configmap"
)

// ValidActions lists the accepted values of --action.
var ValidActions = []Action{
	CreateConfigMaps,
	UpdateSetupConfigMap,
	UpdateDatasetsConfigMap,
}

var ErrInvalidAction = errors.New("invalid action")

func ValidActionNames() string {
	names := make([]string, 0, len(ValidActions))
	for _, action := range ValidActions {
		names = append(names, string(action))
	}

	return strings.Join(names, ", ")
}

// ParseAction returns the Action named by s. Anything but an exact match of
// one of ValidActions is rejected.
func ParseAction(s string) (Action, error) {
	for _, action := range ValidActions {
		if s == string(action) {
			return action, nil
		}
	}

	return "", fmt.Errorf("%w: '--action' parameter value must contain a known action. Valid actions: %s. Value passed: %s",
		ErrInvalidAction, ValidActionNames(), s)
}

// Run executes action.
func (r *Runner) Run(ctx context.Context, action Action) error {
	switch action {
	case CreateConfigMaps:
		return r.CreateConfigMaps(ctx)
	case UpdateSetupConfigMap:
		return r.UpdateSetupConfigMap(ctx)
	case UpdateDatasetsConfigMap:
		return r.UpdateDatasetsConfigMap(ctx)
	default:
		_, err := ParseAction(string(action))
		return err
	}
}
