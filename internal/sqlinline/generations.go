package sqlinline

const QInsertGeneration = `--sql d9de2583-be08-4612-8506-00d8b7fffd8c
insert into generations(
  id,
  input_type,
  input_content,
  hook,
  caption,
  cta,
  final_output,
  cost,
  hook_cost,
  caption_cost,
  cta_cost,
  merge_cost,
  created_at
) values (
  $1::uuid,
  $2::text,
  $3::text,
  $4::text,
  $5::text,
  $6::text,
  $7::text,
  $8::double precision,
  $9::double precision,
  $10::double precision,
  $11::double precision,
  $12::double precision,
  $13::timestamptz
);
`

const QListGenerations = `--sql fd95847d-d305-4b97-a2da-bd1b65d3d0df
select
  id::text,
  input_type,
  input_content,
  final_output,
  cost,
  created_at
from generations
order by created_at desc, id desc
limit $1::int offset $2::int;
`

const QCountGenerations = `--sql 1fbc076c-2022-42c9-9740-8e8afad0503f
select count(*)::int
from generations;
`

const QSelectGenerationByID = `--sql b6ec9a97-1f15-4b9d-8db1-9325d7099651
select
  id::text,
  input_type,
  input_content,
  hook,
  caption,
  cta,
  final_output,
  cost,
  hook_cost,
  caption_cost,
  cta_cost,
  merge_cost,
  created_at
from generations
where id = $1::uuid
limit 1;
`

const QDeleteGeneration = `--sql ad5c7e5e-8268-4374-9583-4f01c1d42123
delete from generations
where id = $1::uuid;
`
