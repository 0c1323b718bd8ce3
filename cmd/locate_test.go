package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"audio-converter/domain/conversion"
)

type mockProber struct {
	path       string
	locateErr  error
	version    string
	versionErr error
	probed     string
}

func (m *mockProber) Locate(ctx context.Context) (string, error) {
	return m.path, m.locateErr
}

func (m *mockProber) Version(ctx context.Context, path string) (string, error) {
	m.probed = path
	return m.version, m.versionErr
}

func TestRunLocateWithDependencies(t *testing.T) {
	t.Run("prints path and version", func(t *testing.T) {
		prober := &mockProber{path: "/usr/bin/ffmpeg", version: "ffmpeg version 7.1"}
		var out bytes.Buffer

		if err := RunLocateWithDependencies(context.Background(), prober, &out); err != nil {
			t.Fatalf("RunLocateWithDependencies() unexpected error: %v", err)
		}
		want := "ffmpeg: /usr/bin/ffmpeg\nffmpeg version 7.1\n"
		if out.String() != want {
			t.Errorf("output = %q, want %q", out.String(), want)
		}
		if prober.probed != "/usr/bin/ffmpeg" {
			t.Errorf("Version called with %q", prober.probed)
		}
	})

	t.Run("not found", func(t *testing.T) {
		prober := &mockProber{locateErr: conversion.ErrToolNotFound}
		var out bytes.Buffer

		err := RunLocateWithDependencies(context.Background(), prober, &out)
		if !errors.Is(err, conversion.ErrToolNotFound) {
			t.Fatalf("error = %v, want ErrToolNotFound", err)
		}
		if out.Len() != 0 {
			t.Errorf("unexpected output %q", out.String())
		}
	})

	t.Run("version probe fails", func(t *testing.T) {
		prober := &mockProber{path: "/usr/bin/ffmpeg", versionErr: errors.New("exec format error")}
		var out bytes.Buffer

		err := RunLocateWithDependencies(context.Background(), prober, &out)
		if err == nil || !strings.Contains(err.Error(), "verification failed") {
			t.Fatalf("error = %v, want verification failure", err)
		}
	})
}
