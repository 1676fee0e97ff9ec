// Package domain is the earthquake catalog aggregation engine.
//
// # Catalog
//
// A [Catalog] is an ordered slice of [Observation] records, appended in
// ascending time order by the source. Records are removed as a unit, either
// by index ([Catalog.RemoveEntry]) or by a rectangular epicenter filter
// ([Catalog.RemoveEntriesBy]). Every window test uses the half-open
// convention begin <= time < end.
//
// # Magnitude and Energy
//
// Magnitude is a logarithmic encoding of radiated energy:
//
//	E = 10^(4.8 + 1.5M)          (joules)
//	M = (log10(E + 1e-14) - 4.8) / 1.5
//
// The 1e-14 offset makes an empty window convert to a large negative
// magnitude instead of -Inf.
//
// # Derived Series
//
// [Process] resamples the catalog on a grid that starts at the earliest
// observation and ends before latest + step (hourly by default):
//
//	time_and_counts             count(t-W/2, t+W/2) / W at every grid point
//	time_and_summed_magnitudes  M(energy(t-W/2, t+W/2)), kept only when > 0
//	cumulative_magnitudes       one point per observation, M of the energy
//	                            released from that observation to the end
//
// The cumulative series is built by a reverse-chronological scan, so its
// first entry is the magnitude equivalent of the whole catalog.
package domain
