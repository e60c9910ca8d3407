// Menaxa - Security Intelligence Feed Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/menaxa

/*
Package cache bounds how much of the CVE dataset is held in memory.

Two structures live here:

  - PartitionCache maps a partition key (a year) to its filtered records. It
    holds at most N partitions (2 by default) and evicts in insertion order,
    so a burst of reads on one old year cannot pin it ahead of a newer load.
  - CountIndex remembers each partition's filtered record count, keyed by the
    file's size and modification time. It is never evicted and lets unscoped
    pagination compute totals without loading every year.

# Usage

	pc := cache.NewPartitionCache(cfg.Cache.MaxPartitions, func(key string) ([]models.Record, error) {
	    raw, err := st.LoadPartitionRaw(key)
	    if err != nil {
	        return nil, err
	    }
	    return filter.Apply(raw), nil
	})

	records, err := pc.GetOrLoad("2024")

	idx, err := cache.NewCountIndex(cache.CountIndexBadger, "/var/lib/menaxa/counts")
	defer idx.Close()

# Thread Safety

Both structures are safe for concurrent use. Records handed out by the
partition cache are shared and must not be modified.
*/
package cache
