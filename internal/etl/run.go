package etl

import (
	"context"
	"time"

	"sparkify/internal/logging"
	"sparkify/internal/metrics"
	"sparkify/internal/storage"
	"sparkify/internal/transformer"
)

// Source locates one input tree.
type Source struct {
	Root string
	Ext  string
}

// Options configures Run.
type Options struct {
	Job      string
	Songs    Source
	Logs     Source
	Progress Progress
}

// Summary is the outcome of Run. Datasets holds one Result per dataset that
// was started, including the one that failed.
type Summary struct {
	Datasets []Result
	Totals   transformer.Stats
	Duration time.Duration
}

// Run loads the song catalog and then the event logs. Songs go first so
// that every songplay lookup can see the whole catalog.
func Run(ctx context.Context, gw storage.Gateway, opts Options) (Summary, error) {
	start := time.Now()
	var sum Summary

	datasets := []Dataset{
		{Name: "songs", Root: opts.Songs.Root, Ext: opts.Songs.Ext, Transform: transformer.SongFile},
		{Name: "logs", Root: opts.Logs.Root, Ext: opts.Logs.Ext, Transform: transformer.LogFile},
	}
	for _, ds := range datasets {
		res, err := ProcessData(ctx, gw, opts.Job, ds, opts.Progress)
		metrics.RecordStep(opts.Job, ds.Name, err, res.Duration)
		recordRows(opts.Job, res.Stats)

		sum.Datasets = append(sum.Datasets, res)
		sum.Totals.Add(res.Stats)
		if err != nil {
			sum.Duration = time.Since(start)
			return sum, err
		}
		logging.Info().Str("dataset", ds.Name).
			Int("files", res.Loaded).
			Dur("took", res.Duration).
			Msg("dataset loaded")
	}

	sum.Duration = time.Since(start)
	t := sum.Totals
	logging.Info().
		Int("songs", t.Songs).
		Int("artists", t.Artists).
		Int("events", t.Events).
		Int("users", t.Users).
		Int("songplays", t.Plays).
		Int("matched", t.Matched).
		Int("missed", t.Missed).
		Dur("took", sum.Duration).
		Msg("run complete")
	return sum, nil
}

func recordRows(job string, st transformer.Stats) {
	metrics.RecordRow(job, "songs", int64(st.Songs))
	metrics.RecordRow(job, "artists", int64(st.Artists))
	metrics.RecordRow(job, "times", int64(st.Times))
	metrics.RecordRow(job, "users", int64(st.Users))
	metrics.RecordRow(job, "songplays", int64(st.Plays))
	metrics.RecordRow(job, "matched", int64(st.Matched))
	metrics.RecordRow(job, "missed", int64(st.Missed))
}
