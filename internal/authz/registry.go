// Package authz resolves volunteer authorization codes to display identities.
package authz

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"precos/internal/core"
)

// Registry resolves a code to a volunteer's full name. A false result means
// the code is not authorized, whatever the reason: resolution must never
// grant access when the backing source cannot be read.
type Registry interface {
	Resolve(ctx context.Context, code string) (fullName string, ok bool)
}

// FileRegistry reads autorizados.csv (columns chave, nome_completo) on every
// resolution call, so registry edits take effect without a restart.
type FileRegistry struct {
	path string
}

func NewFileRegistry(path string) *FileRegistry {
	return &FileRegistry{path: path}
}

// Resolve performs an exact, case-sensitive match on the code. If the source
// is missing or unreadable every code resolves to not-authorized.
func (r *FileRegistry) Resolve(ctx context.Context, code string) (string, bool) {
	records, err := r.read()
	if err != nil {
		slog.WarnContext(ctx, "Authorization source unavailable, denying all codes",
			"path", r.path, "error", err)
		return "", false
	}
	for _, rec := range records {
		if rec.Code == code {
			return rec.FullName, true
		}
	}
	return "", false
}

func (r *FileRegistry) read() ([]core.AuthorizationRecord, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open authorization file: %w", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read authorization header: %w", err)
	}
	codeCol, nameCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "chave":
			codeCol = i
		case "nome_completo":
			nameCol = i
		}
	}
	if codeCol < 0 || nameCol < 0 {
		return nil, fmt.Errorf("authorization header missing chave/nome_completo: %v", header)
	}

	var out []core.AuthorizationRecord
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read authorization row: %w", err)
		}
		out = append(out, core.AuthorizationRecord{
			Code:     rec[codeCol],
			FullName: rec[nameCol],
		})
	}
	return out, nil
}

// StaticRegistry is a fixed in-memory registry for tests and development.
type StaticRegistry struct {
	records map[string]string
}

func NewStaticRegistry(records map[string]string) *StaticRegistry {
	m := make(map[string]string, len(records))
	for code, name := range records {
		m[code] = name
	}
	return &StaticRegistry{records: m}
}

func (r *StaticRegistry) Resolve(_ context.Context, code string) (string, bool) {
	name, ok := r.records[code]
	return name, ok
}
