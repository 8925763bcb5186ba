// Package sqlinline holds the service's SQL statements as marked constants.
// The leading --sql marker line is stripped and logged by infra.SQLRunner.
package sqlinline

const QInsertJob = `--sql 7c2f1a9e-3b44-4d1c-9e70-2f8a4c6d1b05
insert into jobs (id, status, strategy, model, prompt, error_message, file_size)
values ($1, $2, $3, $4, $5, $6, $7)
on conflict (id) do update
set status = excluded.status,
    error_message = excluded.error_message,
    file_size = excluded.file_size,
    updated_at = now();
`

const QSelectJob = `--sql 0d81b6f2-5a3e-4c97-8b21-64e9d0a7c343
select id, status, strategy, model, prompt, error_message, file_size, created_at, updated_at
from jobs
where id = $1;
`
