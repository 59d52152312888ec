// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package registry answers one question about a container registry:
// has an image already been published under a given tag? exprun asks it
// before dispatching a build so that rebuilding a commit whose image
// exists is skipped.
//
// Lookups are manifest HEAD requests through go-containerregistry, so
// no image content is transferred. Credentials come from the same
// keychain docker and crane use (~/.docker/config.json and credential
// helpers).
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/go-containerregistry/pkg/authn"
	"github.com/google/go-containerregistry/pkg/name"
	"github.com/google/go-containerregistry/pkg/v1/remote"
	"github.com/google/go-containerregistry/pkg/v1/remote/transport"
)

// Config configures a Client. The zero value is usable.
type Config struct {
	// Keychain resolves registry credentials. Defaults to
	// authn.DefaultKeychain.
	Keychain authn.Keychain

	// Transport carries registry requests. Defaults to
	// remote.DefaultTransport.
	Transport http.RoundTripper

	// Insecure permits plain-HTTP registries.
	Insecure bool

	// Logger receives debug lines for each lookup. Defaults to a
	// logger that discards output.
	Logger *slog.Logger
}

// Client checks image existence in OCI registries.
type Client struct {
	keychain  authn.Keychain
	transport http.RoundTripper
	insecure  bool
	logger    *slog.Logger
}

// New creates a Client from config.
func New(config Config) *Client {
	client := &Client{
		keychain:  config.Keychain,
		transport: config.Transport,
		insecure:  config.Insecure,
		logger:    config.Logger,
	}
	if client.keychain == nil {
		client.keychain = authn.DefaultKeychain
	}
	if client.transport == nil {
		client.transport = remote.DefaultTransport
	}
	if client.logger == nil {
		client.logger = slog.New(slog.DiscardHandler)
	}
	return client
}

// Exists reports whether image (a registry path without a tag, such as
// "ghcr.io/acme/node") has a manifest tagged tag. A registry that
// answers 404 means absent; any other failure is returned as an error
// so that an unreachable registry is not mistaken for a missing image.
func (c *Client) Exists(ctx context.Context, image, tag string) (bool, error) {
	var options []name.Option
	if c.insecure {
		options = append(options, name.Insecure)
	}
	reference, err := name.NewTag(image+":"+tag, options...)
	if err != nil {
		return false, fmt.Errorf("parsing image reference %s:%s: %w", image, tag, err)
	}

	descriptor, err := remote.Head(reference,
		remote.WithContext(ctx),
		remote.WithAuthFromKeychain(c.keychain),
		remote.WithTransport(c.transport),
	)
	if err != nil {
		if isNotFound(err) {
			c.logger.Debug("image tag not found", "image", reference.String())
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", reference.String(), err)
	}

	c.logger.Debug("image tag found", "image", reference.String(), "digest", descriptor.Digest.String())
	return true, nil
}

// isNotFound reports whether err is the registry saying the tag or the
// repository does not exist.
func isNotFound(err error) bool {
	var transportError *transport.Error
	if !errors.As(err, &transportError) {
		return false
	}
	if transportError.StatusCode == http.StatusNotFound {
		return true
	}
	for _, diagnostic := range transportError.Errors {
		switch diagnostic.Code {
		case transport.ManifestUnknownErrorCode, transport.NameUnknownErrorCode:
			return true
		}
	}
	return false
}
