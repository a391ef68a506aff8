// Package services implements the business logic layer of the TabScan
// application. It provides a clean separation between HTTP handlers and
// the nullity engine, ensuring that orchestration rules are centralized
// and testable.
//
// # Architecture
//
// Services follow these architectural principles:
//
//	1. Interface-driven design for testability
//	2. Context propagation for cancellation and tracing
//	3. Dependency injection for loose coupling
//	4. Immutable dataset snapshots: reductions register new datasets
//	5. Domain-focused methods that encapsulate business rules
//
// # Service Layer Responsibilities
//
// The service layer is responsible for:
//
//	- The in-memory dataset registry and its lifecycle
//	- Dispatching loads to the right loader per source type
//	- Running scans and broadcasting their progress
//	- Applying reductions and registering the results
//	- Cross-cutting concerns (logging, metrics, memory reclaim)
//	- Error handling and transformation
//
// # Common Service Pattern
//
// Services typically follow this structure:
//
//	type ServiceName struct {
//	    deps   Dependencies
//	    logger *slog.Logger
//	}
//
//	func NewServiceName(deps Dependencies, logger *slog.Logger) *ServiceName {
//	    if logger == nil {
//	        logger = slog.Default()
//	    }
//	    return &ServiceName{deps: deps, logger: logger}
//	}
//
//	func (s *ServiceName) BusinessOperation(ctx context.Context, input Input) (*Output, error) {
//	    if err := input.Validate(); err != nil {
//	        return nil, fmt.Errorf("validation failed: %w", err)
//	    }
//	    result, err := s.deps.Operation(ctx, input)
//	    if err != nil {
//	        s.logger.ErrorContext(ctx, "operation failed", "error", err)
//	        return nil, fmt.Errorf("operation failed: %w", err)
//	    }
//	    return result, nil
//	}
package services
