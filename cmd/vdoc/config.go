// Licensed to the Apache Software Foundation (ASF) under one
// or more contributor license agreements.  See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership.  The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License.  You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/apache/arrow-vdoc/vdoc"
	"github.com/docopt/docopt-go"
	"gopkg.in/yaml.v3"
)

const (
	formatJSON    = "json"
	formatMsgPack = "msgpack"
)

// config holds the conversion settings. Values come from the YAML file
// named by --config first and are then overridden by flags.
type config struct {
	From         string `yaml:"from"`
	To           string `yaml:"to"`
	Pretty       bool   `yaml:"pretty"`
	NestingLimit int    `yaml:"nesting-limit"`
	Capacity     int    `yaml:"capacity"`
	Filter       string `yaml:"filter"`
}

func defaultConfig() config {
	return config{
		From:         formatJSON,
		To:           formatJSON,
		NestingLimit: vdoc.DefaultNestingLimit,
	}
}

func (c *config) load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		return fmt.Errorf("config %s: %w", path, err)
	}
	return nil
}

func (c *config) apply(opts docopt.Opts) error {
	if s, ok := opts["--from"].(string); ok {
		c.From = s
	}
	if s, ok := opts["--to"].(string); ok {
		c.To = s
	}
	if pretty, _ := opts.Bool("--pretty"); pretty {
		c.Pretty = true
	}
	if s, ok := opts["--filter"].(string); ok {
		c.Filter = s
	}

	var err error
	if s, ok := opts["--nesting-limit"].(string); ok {
		if c.NestingLimit, err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("--nesting-limit: %w", err)
		}
	}
	if s, ok := opts["--capacity"].(string); ok {
		if c.Capacity, err = strconv.Atoi(s); err != nil {
			return fmt.Errorf("--capacity: %w", err)
		}
	}
	return c.validate()
}

func (c *config) validate() error {
	for _, f := range []string{c.From, c.To} {
		if f != formatJSON && f != formatMsgPack {
			return fmt.Errorf("%w %q", errUnknownFormat, f)
		}
	}
	switch {
	case c.NestingLimit < 0:
		return fmt.Errorf("nesting limit must not be negative, got %d", c.NestingLimit)
	case c.Capacity < 0:
		return fmt.Errorf("capacity must not be negative, got %d", c.Capacity)
	}
	return nil
}
