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

package main

import (
	"context"
	"log/slog"

	"github.com/jaycherian/gcp-go-movie-analytics/internal/cloud"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/workflow"
)

// SetupListeners registers the ingestion workflow on every raw batch
// subscription and starts listening.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients) {
	persist := workflow.PersistCommands(config, cloudClients.BiqQueryClient, state.store, state.cache)
	ingestion := workflow.NewIngestionWorkflow(config, cloudClients.RawArchive, persist...)
	for name, listener := range cloudClients.PubSubListeners {
		listener.SetCommand(ingestion)
		listener.Listen(ctx)
		slog.Info("ingestion listener started", "subscription", name)
	}
}
