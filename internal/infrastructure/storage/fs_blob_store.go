// Package storage implementa el almacenamiento de blobs en disco local.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/avelez/pedidos-api/internal/application/proofs"
	"github.com/avelez/pedidos-api/internal/domain"
)

var _ proofs.BlobStore = (*FSBlobStore)(nil)

// FSBlobStore guarda blobs como archivos bajo un directorio base. Las
// referencias que entrega son nombres opacos (UUID más extensión), nunca
// rutas del sistema de archivos.
type FSBlobStore struct {
	dir string
}

// NewFSBlobStore crea el directorio base si no existe.
func NewFSBlobStore(dir string) (*FSBlobStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear directorio de blobs: %w", err)
	}
	return &FSBlobStore{dir: dir}, nil
}

// Save escribe los bytes y devuelve la referencia opaca generada.
func (s *FSBlobStore) Save(data []byte, ext string) (string, error) {
	ref := uuid.New().String() + ext
	if err := os.WriteFile(filepath.Join(s.dir, ref), data, 0o644); err != nil {
		return "", fmt.Errorf("escribir blob: %w", err)
	}
	return ref, nil
}

// Get lee los bytes de una referencia previamente devuelta por Save.
// Rechaza referencias con separadores de ruta.
func (s *FSBlobStore) Get(ref string) ([]byte, error) {
	if ref == "" || strings.ContainsAny(ref, `/\`) || strings.Contains(ref, "..") {
		return nil, domain.ErrNotFound
	}
	data, err := os.ReadFile(filepath.Join(s.dir, ref))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("leer blob: %w", err)
	}
	return data, nil
}
