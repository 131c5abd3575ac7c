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

// Package lambdafn contains the command to run inside the AWS Lambda
// runtime, behind an SQS event source mapping with partial batch
// responses enabled.
package lambdafn

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/maap-project/dps-stac-itemgen/internal/handler"
	"github.com/maap-project/dps-stac-itemgen/internal/itemgen"
	"github.com/spf13/cobra"
)

// Command returns the command to start the Lambda runtime.
func Command() *cobra.Command {
	cfg := &itemgen.Config{}
	cmd := &cobra.Command{
		Args:  cobra.NoArgs,
		Short: "serve SQS batches from the AWS Lambda runtime",
		Use:   "lambdafn",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := cfg.Preflight(ctx); err != nil {
				return err
			}
			publisher, err := cfg.NewPublisher(ctx)
			if err != nil {
				return err
			}
			stores := itemgen.NewS3Stores(cfg)
			coordinator := itemgen.NewCoordinator(
				itemgen.NewProcessor(stores, publisher), cfg.Workers)
			h := handler.New(coordinator)
			lambda.StartWithOptions(h.Handle, lambda.WithContext(ctx))
			return nil
		},
	}
	cfg.Bind(cmd.Flags())
	return cmd
}
