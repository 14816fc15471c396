package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oggyb/skillswap/internal/config"
	svcErr "github.com/oggyb/skillswap/internal/errors"
	"github.com/oggyb/skillswap/internal/logger"
	"github.com/oggyb/skillswap/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.New()
	cfg.Store.Backend = config.BackendSQLite
	cfg.Store.SQLitePath = filepath.Join(t.TempDir(), "skillswap.db")
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.Auth.SeedPassword = "password"
	return cfg
}

// cli runs one command as a fresh process would and returns its stdout.
func cli(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(context.Background(), cfg, logger.Discard(), args, &out)
	return out.String(), err
}

func mustCLI(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	out, err := cli(t, cfg, args...)
	require.NoError(t, err, args)
	return out
}

func TestSwapFlowAcrossInvocations(t *testing.T) {
	cfg := testConfig(t)

	mustCLI(t, cfg, "login", "-email", "rahul@example.com", "-password", "password")

	var me model.User
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "whoami")), &me))
	assert.Equal(t, "1", me.ID)

	var req model.SwapRequest
	out := mustCLI(t, cfg, "request", "-to", "2", "-offered", "React", "-wanted", "Figma", "-message", "weekends?")
	require.NoError(t, json.Unmarshal([]byte(out), &req))
	assert.Equal(t, model.StatusPending, req.Status)
	assert.Equal(t, "1", req.FromUserID)

	// only the recipient answers
	_, err := cli(t, cfg, "accept", "-id", req.ID)
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	mustCLI(t, cfg, "logout")
	mustCLI(t, cfg, "login", "-email", "priya@example.com", "-password", "password")
	mustCLI(t, cfg, "accept", "-id", req.ID)
	mustCLI(t, cfg, "complete", "-id", req.ID)

	var rating model.Rating
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "rate", "-swap", req.ID, "-score", "5")), &rating))
	assert.Equal(t, "1", rating.ToUserID)

	var found []model.User
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "search", "-q", "react")), &found))
	require.Len(t, found, 2)
	assert.Equal(t, 5.0, found[0].Rating)
	assert.Equal(t, 1, found[0].TotalRatings)
}

func TestAdminCommandsNeedAdminSession(t *testing.T) {
	cfg := testConfig(t)

	_, err := cli(t, cfg, "ban", "-user", "2")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	assert.Equal(t, 4, exitCode(err))

	mustCLI(t, cfg, "login", "-email", "admin@skillswap.com", "-password", "password")
	mustCLI(t, cfg, "ban", "-user", "2")
	mustCLI(t, cfg, "broadcast", "-title", "Welcome", "-content", "Be kind", "-type", "info")

	var stats struct {
		ActiveUsers int `json:"activeUsers"`
		BannedUsers int `json:"bannedUsers"`
	}
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "stats")), &stats))
	assert.Equal(t, 1, stats.ActiveUsers)
	assert.Equal(t, 1, stats.BannedUsers)

	var msgs []model.AdminMessage
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "messages")), &msgs))
	require.Len(t, msgs, 1)
	assert.Equal(t, "Welcome", msgs[0].Title)
}

func TestReportCommand(t *testing.T) {
	cfg := testConfig(t)

	_, err := cli(t, cfg, "report", "-type", "users")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)

	mustCLI(t, cfg, "login", "-email", "rahul@example.com", "-password", "password")
	mustCLI(t, cfg, "request", "-to", "2", "-offered", "React", "-wanted", "Figma")
	_, err = cli(t, cfg, "report", "-type", "swaps")
	assert.ErrorIs(t, err, svcErr.ErrUnauthorized)
	assert.Equal(t, 4, exitCode(err))

	mustCLI(t, cfg, "logout")
	mustCLI(t, cfg, "login", "-email", "admin@skillswap.com", "-password", "password")

	var users []model.User
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "report", "-type", "users")), &users))
	require.Len(t, users, 3)
	assert.True(t, users[2].IsAdmin)

	var swaps []model.SwapRequest
	require.NoError(t, json.Unmarshal([]byte(mustCLI(t, cfg, "report", "-type", "swaps")), &swaps))
	require.Len(t, swaps, 1)
	assert.Equal(t, "1", swaps[0].FromUserID)

	assert.JSONEq(t, "[]", mustCLI(t, cfg, "report", "-type", "ratings"))

	_, err = cli(t, cfg, "report", "-type", "messages")
	assert.ErrorIs(t, err, svcErr.ErrInvalidArgument)
	assert.Equal(t, 5, exitCode(err))
}

func TestUsageErrors(t *testing.T) {
	cfg := testConfig(t)

	out, err := cli(t, cfg)
	assert.NoError(t, err)
	assert.Contains(t, out, "usage: skillswap")

	_, err = cli(t, cfg, "teleport")
	assert.ErrorIs(t, err, errUsage)
	assert.Equal(t, 2, exitCode(err))

	_, err = cli(t, cfg, "login", "-nope")
	assert.ErrorIs(t, err, errUsage)

	_, err = cli(t, cfg, "delete", "-id", "missing")
	assert.ErrorIs(t, err, svcErr.ErrNotFound)
	assert.Equal(t, 3, exitCode(err))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"React", "Go", "Figma"}, splitList("React, Go,,Figma "))
	assert.Equal(t, []string{}, splitList(""))
	assert.Equal(t, []string{}, splitList(" , "))
}

func TestPhotoDataURL(t *testing.T) {
	dir := t.TempDir()

	png := filepath.Join(dir, "me.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00"), 0o600))
	url, err := photoDataURL(png)
	require.NoError(t, err)
	assert.True(t, len(url) > len("data:image/png;base64,"))
	assert.NoError(t, model.CheckPhoto(url))

	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just some notes"), 0o600))
	url, err = photoDataURL(txt)
	require.NoError(t, err)
	assert.Error(t, model.CheckPhoto(url))
}
