package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/dedup"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/export"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/models"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/services"
	"github.com/Keerti-Subramanya/HealthCare-Technical-Workflow-Project/storage"
)

func setupRecordRoutes(router *gin.Engine, store *dedup.RecordStore, repo storage.RecordRepository, log *zap.Logger) {
	rg := router.Group("/records")

	rg.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, store.All())
	})

	// Upsert eines einzelnen Records; 201 bei neuem Eintrag, 200 beim Zusammenführen.
	rg.POST("", func(c *gin.Context) {
		var rec models.Record
		if err := c.ShouldBindJSON(&rec); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if strings.TrimSpace(rec.Title) == "" && !rec.Normalize().HasIdentifier() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "record needs a title or an identifier"})
			return
		}

		res := store.Upsert(rec)
		if err := persist(c.Request.Context(), repo, res); err != nil {
			log.Error("Failed to persist record", zap.Int("handle", int(res.Handle)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		status := http.StatusOK
		if res.Outcome == dedup.Inserted {
			status = http.StatusCreated
		}
		c.JSON(status, res)
	})

	// DOIs enthalten "/", daher Wildcard statt einfachem Parameter.
	rg.GET("/lookup/*id", func(c *gin.Context) {
		id := strings.TrimPrefix(c.Param("id"), "/")
		h, rec, ok := store.Lookup(id)
		if !ok {
			c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"handle": h, "canonical_id": rec.CanonicalID(), "record": rec})
	})

	rg.GET("/export", func(c *gin.Context) {
		format := c.DefaultQuery("format", "json")
		schema, ok := export.SchemaByName(c.Query("schema"))
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown schema, use default or zotero"})
			return
		}
		var buf bytes.Buffer
		var err error
		contentType := "text/csv; charset=utf-8"
		filename := "records.csv"

		switch format {
		case "json":
			contentType, filename = "application/json", "records.json"
			err = export.WriteJSON(&buf, store.All())
		case "csv":
			err = export.WriteCSV(&buf, schema, store.Export(schema))
		case "zotero":
			zotero := export.ZoteroSchema()
			filename = "zotero.csv"
			err = export.WriteCSV(&buf, zotero, store.Export(zotero))
		case "xlsx":
			contentType, filename = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "records.xlsx"
			err = export.WriteXLSX(&buf, schema, store.Export(schema))
		case "references":
			contentType, filename = "text/plain; charset=utf-8", "references.txt"
			err = export.WriteReferences(&buf, store.All())
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown format, use json, csv, zotero, xlsx or references"})
			return
		}
		if err != nil {
			log.Error("Export failed", zap.String("format", format), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, contentType, buf.Bytes())
	})
}

// persist schreibt den betroffenen Record an seine Position.
func persist(ctx context.Context, repo storage.RecordRepository, res dedup.UpsertResult) error {
	if repo == nil {
		return nil
	}
	return repo.Save(ctx, int(res.Handle), res.Record)
}

func setupReportRoutes(router *gin.Engine, store *dedup.RecordStore) {
	router.GET("/report", func(c *gin.Context) {
		entries := store.Report()
		if c.Query("conflicts") == "true" {
			entries = store.Conflicts()
		}
		if c.Query("format") == "text" {
			var buf bytes.Buffer
			if err := export.WriteMergeReport(&buf, entries); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
				return
			}
			c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
			return
		}
		if entries == nil {
			entries = []dedup.ReportEntry{}
		}
		c.JSON(http.StatusOK, gin.H{"records": store.Len(), "entries": entries})
	})
}

func setupHarvestRoutes(router *gin.Engine, pipeline *harvestPipeline) {
	router.POST("/harvest", func(c *gin.Context) {
		var req struct {
			Queries []string `json:"queries"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
				return
			}
		}
		if pipeline.Harvester.Running() {
			c.JSON(http.StatusConflict, gin.H{"error": services.ErrHarvestRunning.Error()})
			return
		}

		// wait=true blockiert bis zum Ende und liefert die Zusammenfassung.
		if c.Query("wait") == "true" {
			summary, err := pipeline.Run(c.Request.Context(), req.Queries)
			if errors.Is(err, services.ErrHarvestRunning) {
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
				return
			}
			if err != nil {
				pipeline.Logger.Error("Harvest failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "summary": summary})
				return
			}
			c.JSON(http.StatusOK, summary)
			return
		}

		go func() {
			summary, err := pipeline.Run(context.Background(), req.Queries)
			if err != nil {
				pipeline.Logger.Error("Async harvest failed", zap.Error(err))
				return
			}
			pipeline.Logger.Info("Async harvest completed", zap.String("run_id", summary.RunID), zap.Int("inserted", summary.Inserted), zap.Int("merged", summary.Merged))
		}()
		c.JSON(http.StatusAccepted, gin.H{"message": "Harvest triggered."})
	})
}

func setupSearchQueryRoutes(router *gin.Engine, repo storage.CatalogRepository, log *zap.Logger) {
	rg := router.Group("/search-queries")
	rg.POST("", func(c *gin.Context) {
		var q models.SearchQuery
		if err := c.ShouldBindJSON(&q); err != nil || strings.TrimSpace(q.Term) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		q.Term = strings.TrimSpace(q.Term)
		if err := repo.AddSearchQuery(c.Request.Context(), &q); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "search query already exists"})
				return
			}
			log.Error("Failed to create search query", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create search query"})
			return
		}
		c.JSON(http.StatusCreated, q)
	})
	rg.GET("", func(c *gin.Context) {
		queries, err := repo.SearchQueries(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if queries == nil {
			queries = []models.SearchQuery{}
		}
		c.JSON(http.StatusOK, queries)
	})
}

func setupPICOKeywordRoutes(router *gin.Engine, repo storage.CatalogRepository, log *zap.Logger) {
	rg := router.Group("/pico-keywords")
	rg.POST("", func(c *gin.Context) {
		var k models.PICOKeyword
		if err := c.ShouldBindJSON(&k); err != nil || strings.TrimSpace(k.Term) == "" || strings.TrimSpace(k.Category) == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
			return
		}
		k.Term = strings.ToLower(strings.TrimSpace(k.Term))
		if err := repo.AddPICOKeyword(c.Request.Context(), &k); err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				c.JSON(http.StatusConflict, gin.H{"error": "keyword already exists"})
				return
			}
			log.Error("Failed to create PICO keyword", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create keyword"})
			return
		}
		c.JSON(http.StatusCreated, k)
	})
	rg.GET("", func(c *gin.Context) {
		keywords, err := repo.PICOKeywords(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		if keywords == nil {
			keywords = []models.PICOKeyword{}
		}
		c.JSON(http.StatusOK, keywords)
	})
}
