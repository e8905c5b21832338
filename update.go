package bimrsid

import (
	"context"
	"fmt"
	"os"

	"github.com/carbocation/genomisc"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Update runs one pass: every record of cfg.BimIn is reconciled against the
// variant index and written to cfg.BimOut, after which the .bed and .fam
// files are copied unchanged. Outputs only appear once the marker pass has
// completed. A fatal error leaves no updated .bim behind.
func Update(ctx context.Context, cfg Config) (Stats, error) {
	var stats Stats

	if err := cfg.Validate(); err != nil {
		return stats, err
	}

	runID := uuid.New().String()
	logger := log.WithFields(log.Fields{
		"run": runID,
		"bim": cfg.BimIn,
	})

	indexPath := cfg.ResolvedIndexPath()
	if cfg.BuildIndex {
		if _, err := os.Stat(genomisc.ExpandHome(indexPath)); os.IsNotExist(err) {
			logger.WithField("index", indexPath).Info("Building variant index")
			if _, err := BuildVariantIndex(ctx, cfg.VCF, indexPath, IndexOptions{}); err != nil {
				return stats, err
			}
		}
	}

	idx, err := OpenVariantIndex(indexPath)
	if err != nil {
		return stats, err
	}
	defer idx.Close()

	reader, err := OpenMarkerReader(ctx, cfg.BimIn)
	if err != nil {
		return stats, err
	}
	defer reader.Close()

	out, err := createPending(cfg.BimOut)
	if err != nil {
		return stats, err
	}
	defer out.Abort()

	engine := &Engine{
		Index:                 idx,
		IncludeSexChromosomes: cfg.IncludeSexChromosomes,
		PlinkChromosomeCodes:  cfg.PlinkChromosomeCodes,
		Workers:               cfg.Workers,
		BatchSize:             cfg.BatchSize,
	}

	var report *ReportWriter
	if cfg.ReportPath != "" {
		if report, err = CreateReport(cfg.ReportPath, runID, 0); err != nil {
			return stats, err
		}
		defer report.Abort()
		engine.OnDecision = report.Write
	}

	writer := NewMarkerWriter(out, reader.Layout())
	stats, err = engine.Reconcile(ctx, reader, writer)
	if err != nil {
		return stats, err
	}
	if stats.Records != writer.RecordsWritten {
		return stats, fmt.Errorf("read %d records but wrote %d", stats.Records, writer.RecordsWritten)
	}

	if cfg.CheckTrio {
		samples, err := ReadSamples(ctx, cfg.FamIn)
		if err != nil {
			return stats, err
		}
		if err := CheckTrio(cfg.BedIn, stats.Records, len(samples)); err != nil {
			return stats, err
		}
	}

	if err := out.Commit(); err != nil {
		return stats, err
	}

	if err := CopyCompanions(ctx, cfg.BedIn, cfg.BedOut, cfg.FamIn, cfg.FamOut); err != nil {
		// The .bim alone is not a usable trio
		os.Remove(genomisc.ExpandHome(cfg.BimOut))
		return stats, err
	}

	if report != nil {
		if err := report.Close(); err != nil {
			return stats, err
		}
	}

	logger.WithFields(log.Fields{
		"records":            stats.Records,
		"problems":           stats.Problems,
		"skipped":            stats.Skipped,
		"extracted":          stats.Extracted,
		"updated":            stats.Matched + stats.ComplementMatched,
		"complement_matches": stats.ComplementMatched,
		"palindromic":        stats.Palindromic,
		"index":              idx.Path,
		"index_variants":     idx.Metadata.NVariants,
	}).Info("Updated marker identifiers")

	return stats, nil
}
