package core

import (
	"context"
	"sync"
)

// AsyncClient provides asynchronous chat operations.
//
// It wraps the synchronous Client and executes chat turns in separate
// goroutines, suitable for callers driving several conversations at once.
//
// Async methods return channels that receive the result when the turn
// completes. The client tracks all goroutines and provides Wait() to
// ensure all operations finish.
//
// Example:
//
//	asyncClient, _ := core.NewAsyncClient(config)
//	defer asyncClient.Close()
//
//	resultChan := asyncClient.ChatAsync(ctx, &core.ChatRequest{...})
//	result := <-resultChan
//	if result.Error != nil {
//	    log.Fatal(result.Error)
//	}
type AsyncClient struct {
	*Client
	wg sync.WaitGroup
}

// NewAsyncClient creates a new asynchronous Amnesia client.
//
// Parameters:
//   - cfg: Client configuration
//
// Returns:
//   - *AsyncClient: The asynchronous client instance
//   - error: Error if configuration is invalid or initialization fails
func NewAsyncClient(cfg *Config) (*AsyncClient, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return &AsyncClient{
		Client: client,
	}, nil
}

// ChatAsync handles a conversation turn asynchronously.
//
// The turn executes in a separate goroutine and delivers its result via
// the returned channel.
//
// Parameters:
//   - ctx: Context for controlling request lifecycle
//   - req: The chat request
//
// Returns:
//   - <-chan *ChatResult: Channel that receives the result containing
//     the response and error
func (ac *AsyncClient) ChatAsync(ctx context.Context, req *ChatRequest) <-chan *ChatResult {
	resultChan := make(chan *ChatResult, 1)
	ac.wg.Add(1)

	go func() {
		defer ac.wg.Done()
		resp, err := ac.Chat(ctx, req)
		resultChan <- &ChatResult{
			Response: resp,
			Error:    err,
		}
		close(resultChan)
	}()

	return resultChan
}

// Wait blocks until all in-flight async operations complete.
func (ac *AsyncClient) Wait() {
	ac.wg.Wait()
}

// Close waits for in-flight operations and closes the underlying client.
func (ac *AsyncClient) Close() error {
	ac.wg.Wait()
	return ac.Client.Close()
}
