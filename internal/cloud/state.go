// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cloud

import (
	"context"
	"fmt"
	"log/slog"

	"cloud.google.com/go/bigquery"
	credentials "cloud.google.com/go/iam/credentials/apiv1"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
)

// ServiceClients bundles the Google Cloud clients shared by the server and
// the ingest command.
type ServiceClients struct {
	StorageClient   *storage.Client
	PubsubClient    *pubsub.Client
	BiqQueryClient  *bigquery.Client
	IAMClient       *credentials.IamCredentialsClient
	PubSubListeners map[string]*PubSubListener
	RawArchive      *RawArchive
}

func (c *ServiceClients) Close() {
	if c.StorageClient != nil {
		_ = c.StorageClient.Close()
	}
	if c.PubsubClient != nil {
		_ = c.PubsubClient.Close()
	}
	if c.BiqQueryClient != nil {
		_ = c.BiqQueryClient.Close()
	}
	if c.IAMClient != nil {
		_ = c.IAMClient.Close()
	}
}

// NewCloudServiceClients connects every client and prepares one listener per
// configured subscription. Listeners get their command later, once the
// workflows exist.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	if err := config.ValidateCloud(); err != nil {
		return nil, err
	}
	slog.Info("connecting to google cloud", "project", config.Application.GoogleProjectId, "location", config.Application.GoogleLocation)

	clients := &ServiceClients{PubSubListeners: make(map[string]*PubSubListener)}
	var err error
	if clients.StorageClient, err = storage.NewClient(ctx); err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	if clients.PubsubClient, err = pubsub.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		clients.Close()
		return nil, fmt.Errorf("pubsub client: %w", err)
	}
	if clients.BiqQueryClient, err = bigquery.NewClient(ctx, config.Application.GoogleProjectId); err != nil {
		clients.Close()
		return nil, fmt.Errorf("bigquery client: %w", err)
	}
	if clients.IAMClient, err = credentials.NewIamCredentialsClient(ctx); err != nil {
		clients.Close()
		return nil, fmt.Errorf("iam credentials client: %w", err)
	}

	for key, sub := range config.TopicSubscriptions {
		listener, err := NewPubSubListener(clients.PubsubClient, sub.Name, nil)
		if err != nil {
			clients.Close()
			return nil, err
		}
		clients.PubSubListeners[key] = listener
	}
	clients.RawArchive = NewRawArchive(clients.StorageClient, clients.IAMClient, config)
	return clients, nil
}
