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
	"os"
	"strings"

	"github.com/imdario/mergo"

	cfg "github.com/quantbench/quantbench/pkg/quantbench/config"
	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
	"github.com/quantbench/quantbench/pkg/quantbench/schema/latest"
	skutil "github.com/quantbench/quantbench/pkg/quantbench/util"
)

// ApplyProfiles modifies the config by applying the selected and
// auto-activated profiles, and returns the list of applied profile names.
func ApplyProfiles(c *latest.QuantbenchConfig, opts cfg.Options) ([]string, error) {
	byName := profilesByName(c.Profiles)

	profiles, err := activatedProfiles(c.Profiles, opts)
	if err != nil {
		return nil, fmt.Errorf("finding auto-activated profiles: %w", err)
	}

	for _, name := range profiles {
		profile, present := byName[name]
		if !present {
			return nil, fmt.Errorf("couldn't find profile %s", name)
		}

		if err := applyProfile(c, profile); err != nil {
			return nil, fmt.Errorf("applying profile %q: %w", name, err)
		}
	}

	return profiles, nil
}

// activatedProfiles returns the profiles activated explicitly on the command
// line and by their activation criteria. Explicit profiles prefixed with `-`
// deactivate an auto-activated profile.
func activatedProfiles(profiles []latest.Profile, opts cfg.Options) ([]string, error) {
	var activated []string

	if opts.ProfileAutoActivation {
		for _, profile := range profiles {
			for _, cond := range profile.Activation {
				command := isCommand(cond.Command, opts)

				env, err := isEnv(cond.Env)
				if err != nil {
					return nil, err
				}

				if command && env {
					activated = append(activated, profile.Name)
				}
			}
		}
	}

	for _, profile := range opts.Profiles {
		if strings.HasPrefix(profile, "-") {
			activated = removeValue(activated, strings.TrimPrefix(profile, "-"))
		} else {
			activated = append(activated, profile)
		}
	}

	return activated, nil
}

func removeValue(values []string, value string) []string {
	var updated []string

	for _, v := range values {
		if v != value {
			updated = append(updated, v)
		}
	}

	return updated
}

func isEnv(env string) (bool, error) {
	if env == "" {
		return true, nil
	}

	keyValue := strings.SplitN(env, "=", 2)
	if len(keyValue) != 2 {
		return false, fmt.Errorf("invalid env variable format: %s, should be KEY=VALUE", env)
	}

	key := keyValue[0]
	value := keyValue[1]

	envValue := os.Getenv(key)

	// Special case, since otherwise the regex substring check
	// (`re.Compile("").MatchString(envValue)`) would always match which is
	// most probably not what the user wanted.
	if value == "" {
		return envValue == "", nil
	}

	return skutil.RegexEqual(value, envValue), nil
}

func isCommand(command string, opts cfg.Options) bool {
	if command == "" {
		return true
	}

	return skutil.RegexEqual(command, opts.Command)
}

func applyProfile(config *latest.QuantbenchConfig, profile latest.Profile) error {
	log.Entry(context.TODO()).Infof("applying profile: %s", profile.Name)

	// Fields set in the profile win, the main config fills in the rest.
	if err := mergo.Merge(&profile.Pipeline, config.Pipeline); err != nil {
		return fmt.Errorf("merging profile %q: %w", profile.Name, err)
	}
	config.Pipeline = profile.Pipeline

	// The profiles field is removed from the resulting config
	config.Profiles = nil
	return nil
}

func profilesByName(profiles []latest.Profile) map[string]latest.Profile {
	byName := make(map[string]latest.Profile)
	for _, profile := range profiles {
		byName[profile.Name] = profile
	}
	return byName
}
