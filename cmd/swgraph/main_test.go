package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hanpama/swgraph/internal/config"
	"github.com/hanpama/swgraph/internal/repository/seed"
	"github.com/stretchr/testify/require"
)

func TestRun_UnknownCommand(t *testing.T) {
	require.Error(t, run(nil))
	require.Error(t, run([]string{"launch"}))
	require.Error(t, run([]string{"help", "launch"}))
	require.NoError(t, run([]string{"help", "serve"}))
}

func TestPrintSchema(t *testing.T) {
	out := filepath.Join(t.TempDir(), "schema.graphql")
	require.NoError(t, run([]string{"print-schema", "-out", out}))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	sdl := string(b)
	for _, fragment := range []string{"type Query {", "interface Character {", "type Droid implements Character {"} {
		require.True(t, strings.Contains(sdl, fragment), "missing %q", fragment)
	}
}

func TestSeed(t *testing.T) {
	t.Chdir(t.TempDir())
	mr := miniredis.RunT(t)

	require.NoError(t, run([]string{"seed", "-redis.addr", mr.Addr()}))

	require.True(t, mr.Exists("swgraph:droid:"+seed.R2D2.String()))
	members, err := mr.Members("swgraph:humans")
	require.NoError(t, err)
	require.Len(t, members, len(seed.Humans()))
}

func TestOpenRepositories(t *testing.T) {
	t.Chdir(t.TempDir())
	mr := miniredis.RunT(t)
	t.Setenv("SWGRAPH_REPOSITORY_BACKEND", config.BackendRedis)
	t.Setenv("SWGRAPH_REPOSITORY_REDIS_ADDR", mr.Addr())
	t.Setenv("SWGRAPH_CACHE_ENABLED", "true")
	cfg, err := config.Load("")
	require.NoError(t, err)

	ctx := context.Background()
	droids, _, closeRepos, err := openRepositories(ctx, cfg)
	require.NoError(t, err)
	defer closeRepos()

	require.NoError(t, run([]string{"seed", "-redis.addr", mr.Addr()}))
	d, err := droids.GetDroid(ctx, seed.R2D2)
	require.NoError(t, err)
	require.Equal(t, "R2-D2", d.Name)
}
