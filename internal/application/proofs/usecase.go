package proofs

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	// Decoders registrados para image.Decode: el comprobante puede llegar
	// como PNG, GIF o WEBP además de JPEG.
	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/disintegration/imaging"

	"github.com/avelez/pedidos-api/internal/domain"
	"github.com/avelez/pedidos-api/internal/domain/entity"
)

// BlobStore puerto de almacenamiento opaco de comprobantes. Las referencias
// nunca exponen rutas de archivo.
type BlobStore interface {
	Save(data []byte, ext string) (ref string, err error)
	Get(ref string) ([]byte, error)
}

const mimePDF = "application/pdf"

// allowedMime tipos aceptados para comprobantes de pago.
var allowedMime = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
	mimePDF:      true,
}

// UseCase almacena comprobantes de pago: valida tipo y tamaño, normaliza
// imágenes (reduce al lado máximo y recomprime JPEG para acotar el costo de
// almacenamiento) y guarda PDFs sin modificar.
type UseCase struct {
	store   BlobStore
	maxSize int64
	maxEdge int
	quality int
}

// NewUseCase construye el caso de uso. maxSize en bytes; maxEdge en píxeles.
func NewUseCase(store BlobStore, maxSize int64, maxEdge, quality int) *UseCase {
	return &UseCase{store: store, maxSize: maxSize, maxEdge: maxEdge, quality: quality}
}

// Store valida y persiste el comprobante, devolviendo la referencia opaca.
func (uc *UseCase) Store(fileName, mimeType string, data []byte) (*entity.ProofOfPayment, error) {
	if int64(len(data)) > uc.maxSize {
		return nil, domain.ErrFileTooLarge
	}
	if !allowedMime[mimeType] {
		return nil, domain.ErrUnsupportedMediaType
	}

	if mimeType == mimePDF {
		ref, err := uc.store.Save(data, ".pdf")
		if err != nil {
			return nil, fmt.Errorf("guardar comprobante: %w", err)
		}
		return &entity.ProofOfPayment{BlobRef: ref, FileName: fileName, MimeType: mimePDF}, nil
	}

	normalized, err := uc.normalizeImage(data)
	if err != nil {
		// El MIME declarado era de imagen pero los bytes no decodifican
		return nil, domain.ErrUnsupportedMediaType
	}
	ref, err := uc.store.Save(normalized, ".jpg")
	if err != nil {
		return nil, fmt.Errorf("guardar comprobante: %w", err)
	}
	// La imagen normalizada siempre queda como JPEG
	return &entity.ProofOfPayment{BlobRef: ref, FileName: fileName, MimeType: "image/jpeg"}, nil
}

// Get recupera los bytes del blob almacenado.
func (uc *UseCase) Get(ref string) ([]byte, error) {
	return uc.store.Get(ref)
}

// normalizeImage decodifica, reduce la imagen para que su lado mayor no
// exceda maxEdge (Lanczos conserva nitidez en capturas de pantalla) y la
// recomprime como JPEG a calidad fija.
func (uc *UseCase) normalizeImage(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decodificar imagen: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	resized := img
	if width > uc.maxEdge || height > uc.maxEdge {
		newWidth, newHeight := uc.maxEdge, uc.maxEdge
		if width > height {
			newHeight = int(float64(height) * float64(uc.maxEdge) / float64(width))
		} else {
			newWidth = int(float64(width) * float64(uc.maxEdge) / float64(height))
		}
		resized = imaging.Resize(img, newWidth, newHeight, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: uc.quality}); err != nil {
		return nil, fmt.Errorf("recomprimir imagen: %w", err)
	}
	return buf.Bytes(), nil
}
