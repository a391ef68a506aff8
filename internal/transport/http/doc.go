// Package http implements the HTTP request handlers for the TabScan
// web service. It provides a thin layer between HTTP transport and
// business logic, keeping handlers focused solely on HTTP concerns.
//
// # Architecture Principles
//
// Handlers in this package follow these principles:
//
//	1. Thin handlers - minimal logic, delegate to services
//	2. HTTP-only concerns - request parsing, response formatting
//	3. Error transformation - convert service errors to HTTP responses
//	4. No business logic - all logic belongs in the service layer
//	5. Consistent patterns - standardized request/response handling
//
// # Request Flow
//
// A typical request flows through these layers:
//
//	HTTP Request → Chi Router → Middleware → Handler → Service → Registry
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *Handler) HandleSomething(w http.ResponseWriter, r *http.Request) {
//	    // 1. Decode and validate the request
//	    var req api.SomeRequest
//	    if err := render.DecodeJSON(r.Body, &req); err != nil {
//	        h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
//	        return
//	    }
//
//	    // 2. Call the service layer
//	    result, err := h.service.DoSomething(r.Context(), req)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, err)
//	        return
//	    }
//
//	    // 3. Format and send the response
//	    render.JSON(w, r, map[string]interface{}{
//	        "status": "success",
//	        "data":   result,
//	    })
//	}
//
// # Error Handling
//
// All errors follow the RFC 7807 Problem Details specification:
//
//	{
//	    "type": "/errors/validation",
//	    "title": "Bad Request",
//	    "status": 400,
//	    "detail": "Axis must be rows or columns",
//	    "instance": "/api/datasets/1b9d6bcd/drop"
//	}
//
// Service sentinel errors are mapped to API errors at the handler
// boundary; application errors carry their own status and flow through
// the shared ErrorHandler unchanged.
//
// # Testing
//
// Handlers are tested using httptest:
//
//	- Mock service dependencies behind the service interfaces
//	- Drive requests through Routes() so URL middleware runs
//	- Verify response envelopes and problem documents
package http
