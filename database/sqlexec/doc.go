// Package sqlexec runs rendered sqlbuilder statements against PostgreSQL.
//
// Statements carry :name placeholders.  Compile rewrites them into the $n
// ordinals PostgreSQL expects.  DB adapts database/sql handles (lib/pq, or
// any other driver) and Pgx adapts pgx connections and pools; both implement
// dao.Executor.
//
// Executors log every statement at debug level, and statements slower than
// the configured threshold at warn level.  They report the counters
// sqlexec.statements and sqlexec.errors, the summary sqlexec.latency_ms and
// the gauge sqlexec.inflight, all tagged with the driver name.
package sqlexec
