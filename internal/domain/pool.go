package domain

import (
	"strings"
)

type MemberID string

// MemberStatus is the coarse lifecycle state of a pool member as far as
// acquisition cares: stopped, running, or anything in between.
type MemberStatus string

const (
	MemberDown  MemberStatus = "down"
	MemberUp    MemberStatus = "up"
	MemberOther MemberStatus = "other"
)

// PoolMember is a snapshot of one pool-owned instance. It is re-fetched on
// every polling iteration and never cached.
type PoolMember struct {
	ID     MemberID
	FQDN   string
	Status MemberStatus
}

func ParseMemberStatus(raw string) MemberStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "down", "stopped", "exited", "created":
		return MemberDown
	case "up", "running":
		return MemberUp
	default:
		return MemberOther
	}
}

func (s MemberStatus) String() string {
	if s == "" {
		return string(MemberOther)
	}

	return string(s)
}
