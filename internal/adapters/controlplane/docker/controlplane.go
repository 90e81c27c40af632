// Package docker serves a pool out of labelled containers on a Docker engine.
// It is meant for labs and integration environments without an oVirt engine.
package docker

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/docker/go-units"
	"github.com/google/uuid"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

const poolLabel = "poolrdp.pool"

type Config struct {
	Host    string
	Image   string
	Network string
	// Domain is the suffix members are created under, e.g. internal.example.com.
	Domain string
	Memory string
	CPUs   float64
}

type ControlPlane struct {
	cfg    Config
	logger *slog.Logger
	dial   func(host string) (engine, error)
}

var _ ports.ControlPlane = (*ControlPlane)(nil)

func NewControlPlane(cfg Config, logger *slog.Logger) *ControlPlane {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &ControlPlane{
		cfg:    cfg,
		logger: logger,
		dial: func(host string) (engine, error) {
			return newDockerEngine(host)
		},
	}
}

// Authenticate checks the engine is reachable. The Docker socket carries its
// own authorization, so the credentials are not inspected here.
func (c *ControlPlane) Authenticate(ctx context.Context, _, _ string) (ports.PoolSession, error) {
	memory, err := c.memoryBytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	eng, err := c.dial(c.cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	if err := eng.ping(ctx); err != nil {
		_ = eng.close()
		return nil, fmt.Errorf("%w: ping docker: %w", domain.ErrControlPlane, err)
	}

	return &session{eng: eng, cfg: c.cfg, memory: memory, logger: c.logger}, nil
}

func (c *ControlPlane) memoryBytes() (int64, error) {
	if strings.TrimSpace(c.cfg.Memory) == "" {
		return 0, nil
	}

	n, err := units.RAMInBytes(c.cfg.Memory)
	if err != nil {
		return 0, fmt.Errorf("parse member memory %q: %w", c.cfg.Memory, err)
	}

	return n, nil
}

type session struct {
	eng    engine
	cfg    Config
	memory int64
	logger *slog.Logger
}

func (s *session) ListMembers(ctx context.Context, poolName string) ([]domain.PoolMember, error) {
	states, err := s.eng.list(ctx, poolLabel+"="+poolName)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	members := make([]domain.PoolMember, 0, len(states))
	for _, st := range states {
		members = append(members, toMember(st))
	}

	return members, nil
}

func (s *session) Allocate(ctx context.Context, poolName string) error {
	if s.cfg.Image == "" {
		return fmt.Errorf("pool %q has no member image: %w", poolName, domain.ErrPoolNotFound)
	}

	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	hostname := poolName + "-" + suffix

	id, err := s.eng.create(ctx, createSpec{
		Name:       "poolrdp-" + hostname,
		Image:      s.cfg.Image,
		Hostname:   hostname,
		Domainname: s.cfg.Domain,
		Network:    s.cfg.Network,
		Labels:     map[string]string{poolLabel: poolName},
		Memory:     s.memory,
		NanoCPUs:   int64(s.cfg.CPUs * 1e9),
	})
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	s.logger.Debug("member allocated", "pool", poolName, "member_id", id, "hostname", hostname)
	return nil
}

func (s *session) Start(ctx context.Context, id domain.MemberID) error {
	if err := s.eng.start(ctx, string(id)); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrControlPlane, err)
	}

	return nil
}

func (s *session) Close() error {
	return s.eng.close()
}

func toMember(st containerState) domain.PoolMember {
	fqdn := st.Hostname
	if st.Hostname != "" && st.Domainname != "" {
		fqdn = st.Hostname + "." + st.Domainname
	}

	return domain.PoolMember{
		ID:     domain.MemberID(st.ID),
		FQDN:   fqdn,
		Status: domain.ParseMemberStatus(st.Status),
	}
}
