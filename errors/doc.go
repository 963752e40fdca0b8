/*
Package errors implements the error taxonomy used by all custody components.

Every failure is an instance of one of the registered kinds, possibly wrapped
with more context. Kinds carry an ABCI code, which is how a failed call is
reported back to the submitter of a transaction. Extensions register their
own, more specific kinds with RegisterSub so that a generic check such as

	errors.ErrAlreadyDone.Is(err)

still holds for an extension specific error.
*/
package errors
