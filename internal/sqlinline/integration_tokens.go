package sqlinline

const QSelectIntegrationToken = `--sql 8f68bc1b-1631-40ad-bead-166033ee362b
select token
from integration_tokens
where provider = $1::text
limit 1;
`

const QUpsertIntegrationToken = `--sql a12199a8-1235-4a37-b91f-4c1a12ea7f79
insert into integration_tokens (provider, token, properties, updated_at)
values ($1::text, $2::text, coalesce($3::jsonb, '{}'::jsonb), now())
on conflict (provider) do update set
  token = excluded.token,
  properties = excluded.properties,
  updated_at = now();
`

const QDeleteIntegrationToken = `--sql af6f1a39-850b-4b04-a067-bb1f026ada91
delete from integration_tokens
where provider = $1::text;
`
