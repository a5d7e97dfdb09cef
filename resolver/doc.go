// Package resolver settles the preferred-edge choices of a candidate
// link graph with case-by-case repairs. It works from three biological
// rules: every cell has at most two cells in the next time point, every
// cell has at most one cell in the previous time point, and a cell that
// simply vanishes is suspicious.
//
// Resolve runs a fixed number of repair passes. Each pass first revives
// dead ends by promoting the best remaining candidate, then lets a
// would-be mother steal a daughter from a nearby worse-scoring mother,
// and finally retries the daughter pairing of every established mother
// against the other candidates. All comparisons use mother scores from
// a scoring.System, computed once up front; families the system has no
// opinion on are skipped. The result contains only the surviving
// preferred edges.
package resolver
