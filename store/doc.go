// Package store compiles access patterns and entities into DynamoDB requests
// for a single-table design and maps the results back.
//
// Every item in the table carries the system attributes described by
// [SystemSchemas]: pk, sk, typ, cadt, uadt, GSI1pk and GSI1sk. Domain
// attributes are declared once as [AttributeSchema] values and registered on
// an [Entity]. Items are always written under attribute aliases.
//
// # Reading
//
// A read is described by an [AccessPattern]: a partition-key expression, an
// optional sort-key expression and an optional index name.
//
//	ap := store.NewAccessPattern(
//	    store.NewPartitionKey("pk", store.OpEQ, store.CreateKey("ST", id)),
//	    store.AccessPatternOptions{SortKey: store.NewSortKey("sk", store.OpBeginsWith, "TEST")},
//	)
//	resp, err := dao.Find(ctx, ap, store.QueryOptions{Limit: 25})
//
// [DAO.FindByAccessPattern] compiles the request without executing it. Pass
// resp.NextToken back in [QueryOptions] to continue a query.
//
// # Writing
//
// [DAO.CreateTemplate], [DAO.UpdateTemplate], [DAO.DeleteParams] and
// [DAO.IncDecCount] compile conditional writes. Wrap them in
// [TransactionItem] values to apply several writes atomically with
// [DAO.Transaction].
//
// # Configuration
//
// Use [DefaultConfig] or [LoadConfig]. Setting DYNAMO_ENDPOINT points the
// client at DynamoDB Local:
//
//	cfg := store.LoadConfig()
//	client, err := store.NewClient(ctx, cfg)
//	dao := store.New(client, cfg, logger)
//
// # Errors
//
// Failures are reported as typed errors carrying an HTTP-style status:
//
//   - [ValidationError] - bad input, listing every failing field
//   - [NotFoundError] - missing table or item
//   - [AuthError] - rejected credentials
//   - [DAOError] - any other store failure
//   - [ConfigurationError] - invalid schema or configuration
package store
