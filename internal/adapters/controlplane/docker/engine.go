package docker

import (
	"context"
	"fmt"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
)

// containerState is the part of an inspected container the pool cares about.
type containerState struct {
	ID         string
	Hostname   string
	Domainname string
	Status     string
}

type createSpec struct {
	Name       string
	Image      string
	Hostname   string
	Domainname string
	Network    string
	Labels     map[string]string
	Memory     int64
	NanoCPUs   int64
}

type engine interface {
	ping(ctx context.Context) error
	list(ctx context.Context, label string) ([]containerState, error)
	create(ctx context.Context, spec createSpec) (string, error)
	start(ctx context.Context, id string) error
	close() error
}

type dockerEngine struct {
	docker *client.Client
}

func newDockerEngine(host string) (*dockerEngine, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}

	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("docker client: %w", err)
	}

	return &dockerEngine{docker: cli}, nil
}

func (e *dockerEngine) ping(ctx context.Context) error {
	_, err := e.docker.Ping(ctx)
	return err
}

func (e *dockerEngine) list(ctx context.Context, label string) ([]containerState, error) {
	f := filters.NewArgs()
	f.Add("label", label)

	containers, err := e.docker.ContainerList(ctx, container.ListOptions{All: true, Filters: f})
	if err != nil {
		return nil, fmt.Errorf("container list: %w", err)
	}

	states := make([]containerState, 0, len(containers))
	for _, ctr := range containers {
		info, err := e.docker.ContainerInspect(ctx, ctr.ID)
		if err != nil {
			if client.IsErrNotFound(err) {
				continue
			}
			return nil, fmt.Errorf("container inspect %s: %w", ctr.ID, err)
		}

		state := containerState{ID: ctr.ID, Status: string(ctr.State)}
		if info.Config != nil {
			state.Hostname = info.Config.Hostname
			state.Domainname = info.Config.Domainname
		}
		if info.State != nil {
			state.Status = string(info.State.Status)
		}
		states = append(states, state)
	}

	return states, nil
}

func (e *dockerEngine) create(ctx context.Context, spec createSpec) (string, error) {
	hostCfg := &container.HostConfig{
		Resources: container.Resources{
			Memory:   spec.Memory,
			NanoCPUs: spec.NanoCPUs,
		},
		SecurityOpt: []string{"no-new-privileges"},
	}
	if spec.Network != "" {
		hostCfg.NetworkMode = container.NetworkMode(spec.Network)
	}

	containerCfg := &container.Config{
		Image:      spec.Image,
		Hostname:   spec.Hostname,
		Domainname: spec.Domainname,
		Labels:     spec.Labels,
	}

	resp, err := e.docker.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return "", fmt.Errorf("container create: %w", err)
	}

	return resp.ID, nil
}

func (e *dockerEngine) start(ctx context.Context, id string) error {
	if err := e.docker.ContainerStart(ctx, id, container.StartOptions{}); err != nil {
		return fmt.Errorf("container start: %w", err)
	}

	return nil
}

func (e *dockerEngine) close() error {
	return e.docker.Close()
}
