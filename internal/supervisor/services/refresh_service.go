// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

package services

import (
	"context"
	"fmt"
	"sync/atomic"
)

// RefreshManager matches the lifecycle of sync.Manager.
type RefreshManager interface {
	Start(ctx context.Context, runNow bool) error
	Stop() error
}

// RefreshService adapts the refresh manager's Start/Stop lifecycle to
// suture's Serve. The startup cycle runs only on the first Serve; a restart
// after a crash resumes the ticker without an immediate extra cycle.
type RefreshService struct {
	manager   RefreshManager
	onStartup bool
	started   atomic.Bool
	name      string
}

// NewRefreshService wraps manager. onStartup runs a cycle as soon as the
// service first starts.
func NewRefreshService(manager RefreshManager, onStartup bool) *RefreshService {
	return &RefreshService{
		manager:   manager,
		onStartup: onStartup,
		name:      "refresh-manager",
	}
}

// Serve implements suture.Service.
func (s *RefreshService) Serve(ctx context.Context) error {
	runNow := s.onStartup && s.started.CompareAndSwap(false, true)
	if err := s.manager.Start(ctx, runNow); err != nil {
		return fmt.Errorf("refresh manager start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.manager.Stop(); err != nil {
		return fmt.Errorf("refresh manager stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *RefreshService) String() string {
	return s.name
}
