/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package logger_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"dirpx.dev/formx/logger"
)

func TestRedaction(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.FromCore(core).With("form", "signup")

	log.Warn("save failed",
		"slot", "user",
		"email", "a@b.com",
		"user_id", 42,
		"params", map[string]any{"password": "hunter2", "name": "ACME"},
	)

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	require.Equal(t, "signup", fields["form"])
	require.Equal(t, "user", fields["slot"])
	require.Equal(t, "[REDACTED]", fields["email"])
	require.True(t, strings.HasPrefix(fields["user_id"].(string), "hash:"))
	params := fields["params"].(map[string]any)
	require.Equal(t, "[REDACTED]", params["password"])
	require.Equal(t, "ACME", params["name"])
}

func TestNewModes(t *testing.T) {
	for _, mode := range []string{"nop", "dev", "prod", ""} {
		l, err := logger.New(mode)
		require.NoError(t, err, mode)
		require.NotNil(t, l.SugaredLogger, mode)
	}
	// Odd-length key/value lists keep the dangling key.
	logger.Nop().Info("dangling", "key")
}
