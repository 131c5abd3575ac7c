// Copyright 2024 The MAAP Authors
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
//
// SPDX-License-Identifier: Apache-2.0

// Package poll contains the command to run the long-lived queue
// consumer.
package poll

import (
	"net/http"

	"github.com/cockroachdb/field-eng-powertools/stopper"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/maap-project/dps-stac-itemgen/internal/source/sqspoll"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// Command returns the command to start the queue consumer.
func Command() *cobra.Command {
	cfg := &sqspoll.Config{}
	var metricsAddr string
	cmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Short: "consume the notification queue and generate items",
		Use:   "poll",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := stopper.WithContext(cmd.Context())
			if err := cfg.Preflight(ctx); err != nil {
				return err
			}
			publisher, err := cfg.Generator.NewPublisher(ctx)
			if err != nil {
				return err
			}
			stores := itemgen.NewS3Stores(&cfg.Generator)
			coordinator := itemgen.NewCoordinator(
				itemgen.NewProcessor(stores, publisher), cfg.Generator.Workers)
			conn, err := sqspoll.New(ctx, cfg, coordinator)
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				serveMetrics(ctx, metricsAddr)
			}
			if err := conn.Start(ctx); err != nil {
				return err
			}
			return ctx.Wait()
		},
	}
	cfg.Bind(cmd.Flags())
	cmd.Flags().StringVar(&metricsAddr, "metricsAddr", "",
		"a host:port on which to serve prometheus metrics")
	return cmd
}

func serveMetrics(ctx *stopper.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	ctx.Go(func(ctx *stopper.Context) error {
		<-ctx.Stopping()
		return srv.Close()
	})
	ctx.Go(func(_ *stopper.Context) error {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
}
