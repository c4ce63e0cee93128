package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/pgvector/pgvector-go"
	"github.com/ragmesh/ragmesh/helper"
	"github.com/ragmesh/ragmesh/model"
	ragsql "github.com/ragmesh/ragmesh/sql"
)

// DocumentsDBHandlerFunctions defines the interface for Documents database operations.
type DocumentsDBHandlerFunctions interface {
	InsertDocument(doc *model.Document, embedding []float32) error
	SelectDocument(id string) (*model.Document, error)
	SelectAllDocuments(lastCreatedAt *time.Time, limit int) ([]*model.Document, error)
	CountDocuments() (int, error)
	SearchDocuments(ctx context.Context, query string, limit int) ([]*model.Document, error)
	DeleteDocument(id string) error
}

// DocumentsDBHandler handles document-related database operations. Its
// SearchDocuments method backs the keyword stage of the retrieval engine.
type DocumentsDBHandler struct {
	db *helper.Database
}

// NewDocumentsDBHandler creates a new documents database handler.
// It initializes the database connection and loads document-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewDocumentsDBHandler(db *helper.Database, force bool) (*DocumentsDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	documentsDbHandler := &DocumentsDBHandler{
		db: db,
	}

	err := ragsql.LoadDocumentsSql(documentsDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load documents sql", err)
	}

	err = documentsDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized DocumentsDBHandler")

	return documentsDbHandler, nil
}

// CreateTable creates the 'documents' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *DocumentsDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_documents();`)
	if err != nil {
		log.Panicf("error initializing documents table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table documents")

	return nil
}

// InsertDocument inserts a document with its optional embedding. Ingestion
// is rebuild-from-scratch, so reinserting an id overwrites the previous row.
func (h *DocumentsDBHandler) InsertDocument(doc *model.Document, embedding []float32) error {
	var vector interface{}
	if len(embedding) > 0 {
		vector = pgvector.NewVector(embedding)
	}

	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_document($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		doc.ID,
		doc.Title,
		doc.Content,
		doc.Author,
		doc.Community,
		string(doc.Kind),
		doc.Metadata,
		vector,
		doc.CreatedAt,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectDocument retrieves a document by id
func (h *DocumentsDBHandler) SelectDocument(id string) (*model.Document, error) {
	doc := &model.Document{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_document($1)`,
		id,
	)

	err := scanDocument(row, doc)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return doc, nil
}

// SelectAllDocuments retrieves all documents with pagination
func (h *DocumentsDBHandler) SelectAllDocuments(lastCreatedAt *time.Time, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_all_documents($1, $2)`,
		lastCreatedAt,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// CountDocuments returns the number of stored documents. Used to decide
// whether a store is already populated before ingesting.
func (h *DocumentsDBHandler) CountDocuments() (int, error) {
	var count int
	err := h.db.Instance.QueryRow(`SELECT count_documents()`).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// SearchDocuments performs full-text search over title and content, ranked
// by relevance.
func (h *DocumentsDBHandler) SearchDocuments(ctx context.Context, query string, limit int) ([]*model.Document, error) {
	rows, err := h.db.Instance.QueryContext(
		ctx,
		`SELECT * FROM search_documents($1, $2)`,
		query,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// DeleteDocument deletes a document by id
func (h *DocumentsDBHandler) DeleteDocument(id string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_document($1)`,
		id,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDocument(row scanner, doc *model.Document) error {
	var kind string
	err := row.Scan(
		&doc.ID,
		&doc.Title,
		&doc.Content,
		&doc.Author,
		&doc.Community,
		&kind,
		&doc.Metadata,
		&doc.CreatedAt,
	)
	if err != nil {
		return err
	}
	doc.Kind = model.DocumentKind(kind)
	return nil
}

func scanDocuments(rows *sql.Rows) ([]*model.Document, error) {
	var documents []*model.Document
	for rows.Next() {
		doc := &model.Document{}
		err := scanDocument(rows, doc)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		documents = append(documents, doc)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return documents, nil
}
