package export

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/krcapps/orderdash/internal/domain/models"
)

// BlobOpener reads stored image bytes by key. blob.Store satisfies it.
type BlobOpener interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Fixed display size for embedded images, in EMUs (914400 per inch).
// 4in x 3in keeps mixed-dimension uploads readable without decoding
// them.
const (
	imageCx = 4 * 914400
	imageCy = 3 * 914400
)

// fetchConcurrency bounds parallel blob reads during a Word export.
const fetchConcurrency = 4

type fetchedImage struct {
	data []byte
	ext  string
}

// ToDocx renders records as a Word document: one labelled block per
// record in input order, with that record's images embedded below it.
// Images that cannot be fetched are skipped with a warning rather than
// failing the whole export.
func ToDocx(ctx context.Context, records []*models.Submission, blobs BlobOpener, log *zap.Logger) ([]byte, error) {
	fetched := fetchImages(ctx, records, blobs, log)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	doc, rels, media := buildDocument(records, fetched)

	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", contentTypesXML()},
		{"_rels/.rels", rootRelsXML()},
		{"word/document.xml", doc},
		{"word/_rels/document.xml.rels", rels},
	}
	for _, p := range parts {
		if err := writeZipFile(zw, p.name, p.data); err != nil {
			return nil, err
		}
	}
	for name, data := range media {
		if err := writeZipFile(zw, "word/media/"+name, data); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("export: finalize docx: %w", err)
	}
	return buf.Bytes(), nil
}

// fetchImages pulls every referenced blob, a few at a time, keyed by
// record and image index so output order never depends on fetch order.
func fetchImages(ctx context.Context, records []*models.Submission, blobs BlobOpener, log *zap.Logger) map[[2]int]fetchedImage {
	var mu sync.Mutex
	fetched := make(map[[2]int]fetchedImage)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for ri, rec := range records {
		for ii, img := range rec.Images {
			ri, ii, img := ri, ii, img
			g.Go(func() error {
				rc, err := blobs.Open(gctx, img.Path)
				if err != nil {
					log.Warn("skipping unfetchable export image",
						zap.String("path", img.Path),
						zap.Error(err))
					return nil
				}
				defer rc.Close()
				data, err := io.ReadAll(rc)
				if err != nil {
					log.Warn("skipping unreadable export image",
						zap.String("path", img.Path),
						zap.Error(err))
					return nil
				}
				mu.Lock()
				fetched[[2]int{ri, ii}] = fetchedImage{data: data, ext: mediaExt(img.ContentType)}
				mu.Unlock()
				return nil
			})
		}
	}
	_ = g.Wait()
	return fetched
}

// buildDocument produces document.xml, its relationships part, and the
// media files.
func buildDocument(records []*models.Submission, fetched map[[2]int]fetchedImage) (doc, rels []byte, media map[string][]byte) {
	var body strings.Builder
	var relEntries strings.Builder
	media = make(map[string][]byte)
	relID := 0

	for ri, rec := range records {
		writeHeadingPara(&body, fmt.Sprintf("Data Order %d", ri+1))
		writeLabelPara(&body, "Nama", rec.UserName)
		writeLabelPara(&body, "Divisi", rec.UserDivision)
		writeLabelPara(&body, "Waktu", DisplayTime(rec.Timestamp))
		writeLabelPara(&body, "Deskripsi", rec.Description)
		writeLabelPara(&body, "Gambar", "")

		for ii := range rec.Images {
			img, ok := fetched[[2]int{ri, ii}]
			if !ok {
				continue
			}
			relID++
			rid := fmt.Sprintf("rIdImg%d", relID)
			name := fmt.Sprintf("image%d%s", relID, img.ext)
			media[name] = img.data
			fmt.Fprintf(&relEntries,
				`<Relationship Id="%s" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/%s"/>`,
				rid, name)
			writeImagePara(&body, rid, relID)
		}

		// Blank separator between records.
		body.WriteString(`<w:p/>`)
	}

	doc = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing"` +
		` xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main"` +
		` xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">` +
		`<w:body>` + body.String() + `</w:body></w:document>`)

	rels = []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		relEntries.String() + `</Relationships>`)

	return doc, rels, media
}

func writeHeadingPara(b *strings.Builder, text string) {
	b.WriteString(`<w:p><w:r><w:rPr><w:b/><w:sz w:val="28"/></w:rPr><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(text))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeLabelPara(b *strings.Builder, label, value string) {
	b.WriteString(`<w:p><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(label + ": "))
	b.WriteString(`</w:t></w:r><w:r><w:t xml:space="preserve">`)
	b.WriteString(escapeXML(value))
	b.WriteString(`</w:t></w:r></w:p>`)
}

func writeImagePara(b *strings.Builder, rid string, n int) {
	fmt.Fprintf(b,
		`<w:p><w:r><w:drawing>`+
			`<wp:inline distT="0" distB="0" distL="0" distR="0">`+
			`<wp:extent cx="%d" cy="%d"/>`+
			`<wp:docPr id="%d" name="Gambar %d"/>`+
			`<a:graphic><a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
			`<pic:pic>`+
			`<pic:nvPicPr><pic:cNvPr id="%d" name="Gambar %d"/><pic:cNvPicPr/></pic:nvPicPr>`+
			`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
			`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
			`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
			`</pic:pic>`+
			`</a:graphicData></a:graphic>`+
			`</wp:inline>`+
			`</w:drawing></w:r></w:p>`,
		imageCx, imageCy, n, n, n, n, rid, imageCx, imageCy)
}

func contentTypesXML() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
		`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
		`<Default Extension="xml" ContentType="application/xml"/>` +
		`<Default Extension="png" ContentType="image/png"/>` +
		`<Default Extension="jpg" ContentType="image/jpeg"/>` +
		`<Default Extension="jpeg" ContentType="image/jpeg"/>` +
		`<Default Extension="webp" ContentType="image/webp"/>` +
		`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
		`</Types>`)
}

func rootRelsXML() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
		`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
		`</Relationships>`)
}

func mediaExt(contentType string) string {
	switch strings.ToLower(contentType) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func writeZipFile(zw *zip.Writer, name string, data []byte) error {
	f, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("export: create %s: %w", name, err)
	}
	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("export: write %s: %w", name, err)
	}
	return nil
}
