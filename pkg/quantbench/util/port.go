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

package util

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"

	"github.com/quantbench/quantbench/pkg/quantbench/output/log"
)

// Loopback is the host used when probing or binding ports that must not be
// reachable from outside the machine.
const Loopback = "127.0.0.1"

// PortSet tracks the ports this process has already claimed, so concurrent
// callers don't race for the same one.
type PortSet struct {
	lock  sync.Mutex
	ports map[int]bool
}

func (f *PortSet) Set(port int) {
	f.lock.Lock()
	defer f.lock.Unlock()

	if f.ports == nil {
		f.ports = map[int]bool{}
	}
	f.ports[port] = true
}

// LoadOrSet claims port and reports whether it was already claimed.
func (f *PortSet) LoadOrSet(port int) bool {
	f.lock.Lock()
	defer f.lock.Unlock()

	exists := f.ports[port]
	if !exists {
		if f.ports == nil {
			f.ports = map[int]bool{}
		}
		f.ports[port] = true
	}
	return exists
}

func (f *PortSet) Length() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return len(f.ports)
}

func (f *PortSet) List() []int {
	f.lock.Lock()
	defer f.lock.Unlock()

	var list []int
	for k := range f.ports {
		list = append(list, k)
	}
	sort.Ints(list)
	return list
}

// GetAvailablePort returns an available port on address that is near the
// requested port when possible. First, check if the provided port is
// available. If not, check the next 10 subsequent ports. If none of those are
// free, return a random port picked by the OS.
func GetAvailablePort(address string, port int, usedPorts *PortSet) int {
	if port > 0 {
		if getPortIfAvailable(address, port, usedPorts) {
			log.Entry(context.TODO()).Debugf("found open port: %d", port)
			return port
		}

		// try the next 10 ports after the provided one
		for i := 0; i < 10; i++ {
			port++
			if getPortIfAvailable(address, port, usedPorts) {
				log.Entry(context.TODO()).Debugf("found open port: %d", port)
				return port
			}
		}
	}

	l, err := net.Listen("tcp", fmt.Sprintf("%s:0", address))
	if err != nil {
		return -1
	}

	p := l.Addr().(*net.TCPAddr).Port

	usedPorts.Set(p)
	l.Close()
	return p
}

func getPortIfAvailable(address string, p int, usedPorts *PortSet) bool {
	if alreadySet := usedPorts.LoadOrSet(p); alreadySet {
		return false
	}

	return IsPortFree(address, p)
}

// IsPortFree reports whether p can be bound on address right now.
func IsPortFree(address string, p int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf("%s:%d", address, p))
	if err != nil {
		return false
	}

	l.Close()
	return true
}
