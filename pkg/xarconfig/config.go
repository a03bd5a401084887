/*
 * Copyright (c) SAS Institute Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package xarconfig describes, in a YAML file, where xar signing
// credentials live and which key to use for a given archive. It follows
// the shape of relic's own config package (ReadFile returning a *Config,
// GetKey looking a named key section up by name) narrowed to what a
// PEM-credential-only signer needs -- no token, tool, or server sections.
package xarconfig

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-xar/xargen/pkg/xar"
)

// KeyConfig names the PEM files backing one signing identity.
type KeyConfig struct {
	Certificate   string   `yaml:"certificate"`
	PrivateKey    string   `yaml:"private_key"`
	Intermediates []string `yaml:"intermediates,omitempty"`
}

// Config is the top-level document: a set of named keys. It carries no
// other settings.
type Config struct {
	Keys map[string]*KeyConfig `yaml:"keys"`
}

// ReadFile loads and parses a YAML config file from path.
func ReadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := new(Config)
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// GetKey looks up a named key section, failing if it doesn't exist or is
// missing its required certificate/private_key paths.
func (c *Config) GetKey(name string) (*KeyConfig, error) {
	if c.Keys == nil {
		return nil, fmt.Errorf("no keys defined in configuration")
	}
	key, ok := c.Keys[name]
	if !ok {
		return nil, fmt.Errorf("key %q not found in configuration", name)
	}
	if key.Certificate == "" {
		return nil, fmt.Errorf("key %q does not specify required value 'certificate'", name)
	}
	if key.PrivateKey == "" {
		return nil, fmt.Errorf("key %q does not specify required value 'private_key'", name)
	}
	return key, nil
}

// LoadSignatureResources reads the PEM files a KeyConfig names and builds
// the SignatureResources Archive.Generate expects, in leaf-then-chain
// order.
func (k *KeyConfig) LoadSignatureResources() (*xar.SignatureResources, error) {
	certPEM, err := os.ReadFile(k.Certificate)
	if err != nil {
		return nil, fmt.Errorf("reading certificate: %w", err)
	}
	keyPEM, err := os.ReadFile(k.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("reading private key: %w", err)
	}
	additional := make([]string, 0, len(k.Intermediates))
	for _, path := range k.Intermediates {
		pemText, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading intermediate certificate %s: %w", path, err)
		}
		additional = append(additional, string(pemText))
	}
	return &xar.SignatureResources{
		Cert:            string(certPEM),
		PrivateKey:      string(keyPEM),
		AdditionalCerts: additional,
	}, nil
}
