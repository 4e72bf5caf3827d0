/*
Copyright 2026 The Quantbench Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package schema

import (
	"context"
	"fmt"

	"github.com/quantbench/quantbench/pkg/quantbench/apiversion"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	schemautil "github.com/quantbench/quantbench/pkg/quantbench/schema/util"
	"github.com/quantbench/quantbench/pkg/quantbench/util"
	yamlutil "github.com/quantbench/quantbench/pkg/quantbench/yaml"
)

type APIVersion struct {
	Version string `yaml:"apiVersion"`
}

var schemaVersions = versions{
	{latest.Version, latest.NewQuantbenchConfig},
}

type version struct {
	apiVersion string
	factory    func() schemautil.VersionedConfig
}

type versions []version

// Find searches the constructor for a given api version.
func (v *versions) Find(apiVersion string) (func() schemautil.VersionedConfig, bool) {
	for _, version := range *v {
		if version.apiVersion == apiVersion {
			return version.factory, true
		}
	}

	return nil, false
}

// ParseConfig reads a quantbench.yaml and returns the parsed config for its
// declared apiVersion.
func ParseConfig(filename string) (schemautil.VersionedConfig, error) {
	buf, err := util.ReadConfiguration(filename)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	return parse(buf)
}

// ParseConfigAndUpgrade reads a quantbench.yaml and upgrades it to the latest
// schema version.
func ParseConfigAndUpgrade(filename string) (schemautil.VersionedConfig, error) {
	cfg, err := ParseConfig(filename)
	if err != nil {
		return nil, err
	}

	return upgradeToLatest(cfg)
}

func parse(buf []byte) (schemautil.VersionedConfig, error) {
	apiVersion := &APIVersion{}
	if err := yamlutil.Unmarshal(buf, apiVersion); err != nil {
		return nil, fmt.Errorf("parsing api version: %w", err)
	}

	factory, present := schemaVersions.Find(apiVersion.Version)
	if !present {
		return nil, fmt.Errorf("unknown api version: %q", apiVersion.Version)
	}

	cfg := factory()
	if err := yamlutil.UnmarshalStrict(buf, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config: %w", err)
	}

	return cfg, nil
}

// upgradeToLatest upgrades a configuration to the latest version.
func upgradeToLatest(vc schemautil.VersionedConfig) (schemautil.VersionedConfig, error) {
	// check to make sure the config version isn't too new
	currentVersion, err := apiversion.ParseVersion(vc.GetVersion())
	if err != nil {
		return nil, fmt.Errorf("parsing api version: %w", err)
	}

	latestVersion := apiversion.MustParseVersion(latest.Version)
	if currentVersion.Compare(latestVersion) == 0 {
		return vc, nil
	}
	if currentVersion.GT(latestVersion) {
		return nil, fmt.Errorf("config version %q is too new for this release: upgrade quantbench", vc.GetVersion())
	}

	log.Entry(context.TODO()).Warnf("config version %q out of date: upgrading to latest %q", vc.GetVersion(), latest.Version)

	for vc.GetVersion() != latest.Version {
		vc, err = vc.Upgrade()
		if err != nil {
			return nil, fmt.Errorf("transforming config: %w", err)
		}
	}

	return vc, nil
}
