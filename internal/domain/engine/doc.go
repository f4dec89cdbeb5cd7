/*
Package engine interprets action flows.

A flow run moves through Pending, Running and then Completed or Aborted.
Actions execute strictly in order; each one finishes before the next
starts. The first failing action aborts the remainder of the flow.
Actions that already ran are not rolled back, and an aborted flow is
reported in its FlowResult and logged without taking the host down.

# Actions

  - UpdateState: dispatched to the session store
  - Navigate: handed to the runtime context
  - Request: performed by a Requester, or simulated with a fixed delay in
    offline mode; responseMapping entries copy JSONPath matches into state
  - AI: answered by a Completer, the text is stored at outputStatePath
  - Script: JavaScript body run in a goja sandbox with state, dispatch and
    navigate in scope

# Re-entrancy

Triggering a flow that is still running is governed by ConcurrencyPolicy:
PolicyAllow runs both interleaved, PolicySkip drops the new trigger and
PolicyQueue runs them one after another.
*/
package engine
