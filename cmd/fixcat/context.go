// Copyright (C) 2026 CardinalHQ, Inc
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, version 3.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <http://www.gnu.org/licenses/>.

package main

import (
	"context"

	"github.com/cardinalhq/fixreader/internal/fixconfig"
)

type contextKey string

const (
	configContextKey    contextKey = "fixcat.config"
	sessionIDContextKey contextKey = "fixcat.session_id"
)

func newCommandContext(cfg *fixconfig.Config, sessionID string) context.Context {
	ctx := context.WithValue(context.Background(), configContextKey, cfg)
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

func configFrom(ctx context.Context) *fixconfig.Config {
	cfg, _ := ctx.Value(configContextKey).(*fixconfig.Config)
	if cfg == nil {
		return fixconfig.DefaultConfig()
	}
	return cfg
}

func sessionIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(sessionIDContextKey).(string)
	return id
}
