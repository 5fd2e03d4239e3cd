package sqlinline

const QCreateGenerationsTable = `--sql 74658680-cf3f-4e87-8f60-9d7c0080cbf7
create table if not exists generations (
  id uuid primary key,
  input_type text not null check (input_type in ('topic', 'prompt')),
  input_content text not null,
  hook text not null,
  caption text not null,
  cta text not null,
  final_output text not null,
  cost double precision not null,
  hook_cost double precision not null,
  caption_cost double precision not null,
  cta_cost double precision not null,
  merge_cost double precision not null,
  created_at timestamptz not null default now()
);
`

const QCreateGenerationsCreatedAtIndex = `--sql cd88c1f2-3444-4d86-83d3-ceedda4071db
create index if not exists generations_created_at_idx
  on generations (created_at desc);
`

const QCreateIntegrationTokensTable = `--sql dcab2fb2-b9fe-4842-8174-7e4fe3326abe
create table if not exists integration_tokens (
  id uuid primary key default gen_random_uuid(),
  provider text not null unique,
  token text not null,
  properties jsonb not null default '{}'::jsonb,
  created_at timestamptz not null default now(),
  updated_at timestamptz not null default now()
);
`

// SchemaStatements is applied in order at startup.
var SchemaStatements = []string{
	QCreateGenerationsTable,
	QCreateGenerationsCreatedAtIndex,
	QCreateIntegrationTokensTable,
}
