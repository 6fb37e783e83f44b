// Copyright 2018 The kingbus Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"fmt"
	"sync"
)

//Registry is the process-wide set of router instances (C8), linked on
//creation and torn down only on process exit.
type Registry struct {
	lock      sync.Mutex
	instances map[string]*RouterInstance
}

//NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{instances: make(map[string]*RouterInstance)}
}

//Register adds inst under its Name. It is an error to register two
//instances with the same name.
func (reg *Registry) Register(inst *RouterInstance) error {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	if _, exists := reg.instances[inst.Name]; exists {
		return fmt.Errorf("router: instance %q already registered", inst.Name)
	}
	reg.instances[inst.Name] = inst
	return nil
}

//Unregister removes the instance named name, if present.
func (reg *Registry) Unregister(name string) {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	delete(reg.instances, name)
}

//Get returns the instance named name, or nil if none is registered.
func (reg *Registry) Get(name string) *RouterInstance {
	reg.lock.Lock()
	defer reg.lock.Unlock()
	return reg.instances[name]
}

//List returns a snapshot slice of every registered instance.
func (reg *Registry) List() []*RouterInstance {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	out := make([]*RouterInstance, 0, len(reg.instances))
	for _, inst := range reg.instances {
		out = append(out, inst)
	}
	return out
}
