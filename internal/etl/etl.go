// Package etl drives a batch run: it discovers the input files of each
// dataset and loads them one transaction per file.
//
// A file is either loaded completely or not at all. The first failing file
// stops the run; files committed before it stay committed. Dimension writes
// are upserts, so a re-run leaves them unchanged; songplays are appended once
// per event and load again on every run.
package etl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sparkify/internal/datasource/file"
	"sparkify/internal/logging"
	"sparkify/internal/metrics"
	"sparkify/internal/storage"
	"sparkify/internal/transformer"
)

// Progress is called after every committed file.
type Progress func(done, total int, path string)

// Dataset is one input tree and the transform that loads its files.
type Dataset struct {
	Name      string
	Root      string
	Ext       string
	Transform transformer.FileFunc
}

// FileError reports the file that stopped a run.
type FileError struct {
	Dataset string
	Path    string
	Index   int // 1-based
	Total   int
	Err     error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s file %d/%d %s: %v", e.Dataset, e.Index, e.Total, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }

// Result summarizes one dataset.
type Result struct {
	Dataset  string
	Found    int
	Loaded   int
	Stats    transformer.Stats
	Duration time.Duration
}

// ProcessData loads every file of ds in lexical path order, committing after
// each one. On the first failure the current file is rolled back and a
// *FileError is returned together with the partial Result. job labels the
// metrics emitted per file.
func ProcessData(ctx context.Context, gw storage.Gateway, job string, ds Dataset, progress Progress) (Result, error) {
	start := time.Now()
	res := Result{Dataset: ds.Name}

	files, err := file.Discover(ds.Root, ds.Ext)
	if err != nil {
		res.Duration = time.Since(start)
		return res, err
	}
	res.Found = len(files)
	logging.Info().Str("dataset", ds.Name).Str("root", ds.Root).Int("files", len(files)).Msg("files found")

	for i, path := range files {
		st, err := loadFile(ctx, gw, ds.Transform, path)
		metrics.RecordFile(job, ds.Name, err)
		if err != nil {
			logging.Error().Err(err).Str("dataset", ds.Name).Str("file", path).
				Int("index", i+1).Int("total", len(files)).Msg("file rolled back")
			res.Duration = time.Since(start)
			return res, &FileError{Dataset: ds.Name, Path: path, Index: i + 1, Total: len(files), Err: err}
		}

		res.Loaded++
		res.Stats.Add(st)
		logging.Info().Str("dataset", ds.Name).Str("file", path).
			Msgf("%d/%d files processed", i+1, len(files))
		logging.Debug().Str("dataset", ds.Name).Str("file", path).
			Int("events", st.Events).Int("songplays", st.Plays).
			Int("matched", st.Matched).Int("missed", st.Missed).Msg("file committed")
		if progress != nil {
			progress(i+1, len(files), path)
		}
	}

	res.Duration = time.Since(start)
	return res, nil
}

// loadFile runs fn over path inside its own transaction.
func loadFile(ctx context.Context, gw storage.Gateway, fn transformer.FileFunc, path string) (transformer.Stats, error) {
	rc, err := file.NewLocal(path).Open(ctx)
	if err != nil {
		return transformer.Stats{}, err
	}
	defer rc.Close()

	tx, err := gw.Begin(ctx)
	if err != nil {
		return transformer.Stats{}, err
	}

	st, err := fn(ctx, tx, path, rc)
	if err == nil {
		err = tx.Commit(ctx)
	}
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			err = errors.Join(err, rbErr)
		}
		return st, err
	}
	return st, nil
}
