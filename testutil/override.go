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

package testutil

import (
	"fmt"
	"reflect"
	"testing"
)

// Override sets a package level variable to a temporary value for the
// duration of the test. The original value is restored on teardown. dest
// must be a pointer to the variable being overridden.
func (t *T) Override(dest, tmp interface{}) {
	teardown, err := override(t.T, dest, tmp)
	if err != nil {
		t.Errorf("temporary override value is invalid: %v", err)
		return
	}
	t.teardownActions = append(t.teardownActions, teardown)
}

func override(t *testing.T, dest, tmp interface{}) (func(), error) {
	dValue := reflect.ValueOf(dest)
	if dValue.Kind() != reflect.Ptr {
		return nil, fmt.Errorf("dest is not a pointer")
	}

	dElem := dValue.Elem()
	if !dElem.CanSet() {
		return nil, fmt.Errorf("dest can't be set")
	}

	saved := reflect.New(dElem.Type())
	saved.Elem().Set(dElem)

	var tValue reflect.Value
	if tmp == nil {
		// a nil overrides to the type's zero value
		tValue = reflect.Zero(dElem.Type())
	} else {
		tValue = reflect.ValueOf(tmp)
	}
	if !tValue.Type().AssignableTo(dElem.Type()) {
		return nil, fmt.Errorf("value of type %v is not assignable to type %v", tValue.Type(), dElem.Type())
	}
	dElem.Set(tValue)

	return func() {
		dElem.Set(saved.Elem())
	}, nil
}
