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
	"log/slog"

	"cloud.google.com/go/pubsub"
	"github.com/jaycherian/gcp-go-movie-analytics/internal/core/cor"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// EventTypeObjectFinalize is the notification event emitted for new objects.
const EventTypeObjectFinalize = "OBJECT_FINALIZE"

// PubSubListener runs a command for every message received on a
// subscription. The message body is handed to the command under cor.CtxIn.
// Messages are acked when the command records no error and nacked otherwise,
// so failed batches are redelivered (and eventually dead-lettered).
type PubSubListener struct {
	client       *pubsub.Client
	subscription *pubsub.Subscription
	command      cor.Command
}

func NewPubSubListener(pubsubClient *pubsub.Client, subscriptionID string, command cor.Command) (*PubSubListener, error) {
	return &PubSubListener{
		client:       pubsubClient,
		subscription: pubsubClient.Subscription(subscriptionID),
		command:      command,
	}, nil
}

// SetCommand sets the command once; later calls are ignored.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts receiving in the background until ctx is cancelled.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("message-listener")
		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			spanCtx, span := tracer.Start(ctx, "receive-message")
			defer span.End()
			span.SetAttributes(
				attribute.String("message.id", msg.ID),
				attribute.String("object.id", msg.Attributes["objectId"]),
			)

			if eventType, ok := msg.Attributes["eventType"]; ok && eventType != EventTypeObjectFinalize {
				slog.DebugContext(spanCtx, "ignoring storage event", "event_type", eventType)
				msg.Ack()
				return
			}
			if m.command == nil {
				slog.ErrorContext(spanCtx, "no command registered for subscription", "subscription", m.subscription.String())
				msg.Nack()
				return
			}

			chainCtx := cor.NewBaseContext()
			defer chainCtx.Close()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}
			span.SetStatus(codes.Error, "failed")
			for name, e := range chainCtx.GetErrors() {
				slog.ErrorContext(spanCtx, "error executing chain", "command", name, "error", e)
			}
			msg.Nack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.String(), "error", err)
		}
	}()
}
