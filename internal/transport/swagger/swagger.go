package swagger

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Document is the HTTP contract, validated once at startup.
type Document struct {
	doc  *openapi3.T
	yaml []byte
	json []byte
}

func Load(ctx context.Context, path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read openapi document: %w", err)
	}
	return Parse(ctx, raw)
}

func Parse(ctx context.Context, raw []byte) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("parse openapi document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid openapi document: %w", err)
	}

	js, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encode openapi document: %w", err)
	}
	return &Document{doc: doc, yaml: raw, json: js}, nil
}

func (d *Document) Version() string {
	if d.doc.Info == nil {
		return ""
	}
	return d.doc.Info.Version
}

// Paths lists the documented paths, for the startup log and route checks.
func (d *Document) Paths() []string {
	return d.doc.Paths.InMatchingOrder()
}

func (d *Document) ServeYAML(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(d.yaml)
}

func (d *Document) ServeJSON(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(d.json)
}

// Handler serves the Swagger UI pointed at the JSON rendering.
func Handler() http.Handler {
	return httpSwagger.Handler(
		httpSwagger.URL("/openapi.json"),
	)
}
