// Package executor implements a breadth-first, batch-friendly GraphQL executor
// with explicit runtime hooks for synchronous resolution, depth-wise batching of
// asynchronous work, abstract-type resolution, and leaf serialization.
//
// # Execution Model
//
// Fields are classified by schema.Field.Async. Synchronous fields (plain
// projections of the source value) are resolved immediately through
// Runtime.ResolveSync and do not add batch depth. Asynchronous fields (those
// that fetch from a repository) are queued, and every field queued at one
// depth is handed to Runtime.BatchResolveAsync in a single call. For a query
// whose asynchronous depth is d, BatchResolveAsync is invoked exactly d times.
//
// Each depth proceeds as follows:
//
//	A. Sync expansion
//	   - Coerce arguments. A field whose arguments cannot be coerced is set to
//	     null with an ARGUMENT_BINDING_ERROR and its resolver is never called.
//	   - Sync fields are resolved and completed in place; async fields reserve
//	     their position in the parent object and are queued.
//
//	B. Batch execution
//	   - Queued tasks not under a nullified path are sent to the runtime in
//	     one call. Results are matched to tasks by index.
//
//	C. Completion
//	   - Results are completed against the field type. Object results expand
//	     their selection sets, which may queue tasks for the next depth.
//	   - A Non-Null violation nullifies the enclosing root field and prunes
//	     queued tasks under it.
//
// # Value Completion
//
//   - List: elements are completed in order with index-aware paths.
//   - Leaf (Scalar/Enum): Runtime.SerializeLeafValue.
//   - Abstract (Interface/Union): Runtime.ResolveType picks the concrete
//     object type, which must be a possible type of the abstract type.
//     Fragments whose type condition names the interface or union apply to
//     every possible type.
//   - Object: completed into an *OrderedMap so responses keep the field
//     order of the query.
//
// # Errors and Cancellation
//
// Errors are accumulated as located GraphQL errors (message + path). Errors
// that expose Extensions() keep those extensions, so repository failures
// surface with their own codes. Batch results are independent, enabling
// partial success within a single batch call.
//
// The request context is checked before and after every batch. Once it is
// done the executor discards any partial response and returns a single
// CANCELLED error with no data.
package executor
