// Package ovirt talks to an oVirt engine through the go-ovirt SDK.
package ovirt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	ovirtsdk4 "github.com/ovirt/go-ovirt"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

type Config struct {
	URL      string
	CAFile   string
	Insecure bool
	Timeout  time.Duration
	// Profile is appended as user@profile when the username carries none.
	Profile string
}

type ControlPlane struct {
	cfg    Config
	logger *slog.Logger
}

var _ ports.ControlPlane = (*ControlPlane)(nil)

func NewControlPlane(cfg Config, logger *slog.Logger) *ControlPlane {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ControlPlane{cfg: cfg, logger: logger}
}

// Authenticate builds a connection and forces an SSO round trip so that bad
// credentials surface here rather than inside the acquisition loop.
func (c *ControlPlane) Authenticate(ctx context.Context, username, password string) (ports.PoolSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	builder := ovirtsdk4.NewConnectionBuilder().
		URL(c.cfg.URL).
		Username(c.qualifiedUser(username)).
		Password(password).
		Insecure(c.cfg.Insecure)
	if c.cfg.CAFile != "" {
		builder = builder.CAFile(c.cfg.CAFile)
	}
	if c.cfg.Timeout > 0 {
		builder = builder.Timeout(c.cfg.Timeout)
	}

	conn, err := builder.Build()
	if err != nil {
		return nil, classify("connect", err)
	}

	if err := conn.Test(); err != nil {
		_ = conn.Close()
		return nil, classify("authenticate", err)
	}

	c.logger.Debug("control plane session opened", "url", c.cfg.URL)
	return &session{conn: conn, logger: c.logger}, nil
}

func (c *ControlPlane) qualifiedUser(username string) string {
	if c.cfg.Profile == "" || strings.Contains(username, "@") {
		return username
	}

	return username + "@" + c.cfg.Profile
}

type session struct {
	conn   *ovirtsdk4.Connection
	logger *slog.Logger

	poolMu  sync.Mutex
	poolIDs map[string]string
}

func (s *session) ListMembers(ctx context.Context, poolName string) ([]domain.PoolMember, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := s.conn.SystemService().VmsService().List().Search(fmt.Sprintf("name=%s*", poolName)).Send()
	if err != nil {
		return nil, classify("list members", err)
	}

	vms, ok := resp.Vms()
	if !ok {
		return nil, nil
	}

	members := make([]domain.PoolMember, 0, len(vms.Slice()))
	for _, vm := range vms.Slice() {
		id, ok := vm.Id()
		if !ok {
			continue
		}
		fqdn, _ := vm.Fqdn()
		status, _ := vm.Status()
		members = append(members, toMember(id, fqdn, status))
	}

	return members, nil
}

func (s *session) Allocate(ctx context.Context, poolName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	poolID, err := s.poolID(poolName)
	if err != nil {
		return err
	}

	if _, err := s.conn.SystemService().VmPoolsService().PoolService(poolID).AllocateVm().Send(); err != nil {
		return classify("allocate", err)
	}

	s.logger.Debug("allocation requested", "pool", poolName, "pool_id", poolID)
	return nil
}

func (s *session) Start(ctx context.Context, id domain.MemberID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := s.conn.SystemService().VmsService().VmService(string(id)).Start().Send(); err != nil {
		return classify("start", err)
	}

	return nil
}

func (s *session) Close() error {
	return s.conn.Close()
}

func (s *session) poolID(poolName string) (string, error) {
	s.poolMu.Lock()
	defer s.poolMu.Unlock()

	if id, ok := s.poolIDs[poolName]; ok {
		return id, nil
	}

	resp, err := s.conn.SystemService().VmPoolsService().List().Search("name=" + poolName).Send()
	if err != nil {
		return "", classify("find pool", err)
	}

	pools, ok := resp.Pools()
	if !ok || len(pools.Slice()) == 0 {
		return "", fmt.Errorf("pool %q: %w", poolName, domain.ErrPoolNotFound)
	}

	id, ok := pools.Slice()[0].Id()
	if !ok {
		return "", fmt.Errorf("pool %q has no id: %w", poolName, domain.ErrControlPlane)
	}

	if s.poolIDs == nil {
		s.poolIDs = map[string]string{}
	}
	s.poolIDs[poolName] = id
	return id, nil
}

func toMember(id, fqdn string, status ovirtsdk4.VmStatus) domain.PoolMember {
	return domain.PoolMember{
		ID:     domain.MemberID(id),
		FQDN:   fqdn,
		Status: domain.ParseMemberStatus(string(status)),
	}
}

func classify(op string, err error) error {
	var authErr *ovirtsdk4.AuthError
	if errors.As(err, &authErr) {
		return fmt.Errorf("%s: %w: %w", op, domain.ErrBadCredentials, err)
	}

	return fmt.Errorf("%s: %w: %w", op, domain.ErrControlPlane, err)
}
