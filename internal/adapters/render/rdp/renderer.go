package rdp

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/bnema/poolrdp/internal/domain"
	"github.com/bnema/poolrdp/internal/ports"
)

const (
	profileFileMode = 0o600
	profileDirMode  = 0o700
	tempFilePattern = ".session-*.rdp.tmp"

	KeyFullAddress        = "full address"
	KeyDriveStoreRedirect = "drivestoredirect"
)

//go:embed default.rdp.tmpl
var defaultTemplate string

type templateData struct {
	EndpointFQDN     string
	SharedResourceID string
}

// Renderer writes the connection profile to one fixed destination, replacing
// whatever was there.
type Renderer struct {
	templatePath string
	destination  string
	mu           sync.Mutex
}

var _ ports.ProfileRenderer = (*Renderer)(nil)

// NewRenderer uses the embedded template when templatePath is empty.
func NewRenderer(templatePath, destination string) *Renderer {
	return &Renderer{templatePath: templatePath, destination: filepath.Clean(destination)}
}

func (r *Renderer) Destination() string {
	return r.destination
}

func (r *Renderer) Render(ctx context.Context, endpointFQDN, sharedResourceID string) (domain.SessionProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionProfile{}, err
	}

	tmpl, err := r.template()
	if err != nil {
		return domain.SessionProfile{}, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{EndpointFQDN: endpointFQDN, SharedResourceID: sharedResourceID}); err != nil {
		return domain.SessionProfile{}, fmt.Errorf("%w: execute template: %v", domain.ErrRender, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := writeAtomic(r.destination, buf.Bytes()); err != nil {
		return domain.SessionProfile{}, fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	return domain.SessionProfile{
		EndpointFQDN:     endpointFQDN,
		SharedResourceID: sharedResourceID,
		DocumentPath:     r.destination,
	}, nil
}

// Load parses the profile currently at the destination.
func (r *Renderer) Load(ctx context.Context) (domain.SessionProfile, error) {
	if err := ctx.Err(); err != nil {
		return domain.SessionProfile{}, err
	}

	r.mu.Lock()
	data, err := os.ReadFile(r.destination)
	r.mu.Unlock()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.SessionProfile{}, fmt.Errorf("%w: no profile at %s", domain.ErrRender, r.destination)
		}
		return domain.SessionProfile{}, fmt.Errorf("%w: read profile: %v", domain.ErrRender, err)
	}

	doc, err := Parse(data)
	if err != nil {
		return domain.SessionProfile{}, fmt.Errorf("%w: %v", domain.ErrRender, err)
	}

	address, _ := doc.Value(KeyFullAddress)
	shared, _ := doc.Value(KeyDriveStoreRedirect)

	return domain.SessionProfile{
		EndpointFQDN:     hostOnly(address),
		SharedResourceID: shared,
		DocumentPath:     r.destination,
	}, nil
}

// hostOnly drops a ":port" suffix from a full address. Credentials are
// registered per host, so the port must not reach them.
func hostOnly(address string) string {
	address = strings.TrimSpace(address)
	host, port, err := net.SplitHostPort(address)
	if err != nil || port == "" {
		return strings.Trim(address, "[]")
	}
	if _, err := strconv.Atoi(port); err != nil {
		return address
	}

	return host
}

func (r *Renderer) template() (*template.Template, error) {
	text := defaultTemplate
	if r.templatePath != "" {
		data, err := os.ReadFile(r.templatePath)
		if err != nil {
			return nil, fmt.Errorf("%w: read template %s: %v", domain.ErrRender, r.templatePath, err)
		}
		text = string(data)
	}

	tmpl, err := template.New("profile").Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: parse template: %v", domain.ErrRender, err)
	}

	return tmpl, nil
}

func writeAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), profileDirMode); err != nil {
		return fmt.Errorf("create profile directory: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp profile: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp profile: %w", err)
	}

	if err := tempFile.Chmod(profileFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp profile: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp profile: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace profile: %w", err)
	}

	cleanup = false
	return nil
}
