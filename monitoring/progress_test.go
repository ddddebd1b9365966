package monitoring

import (
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ProgressBar", func() {
	It("should move items from in progress to finished", func() {
		bar := &ProgressBar{Total: 100}

		var wg sync.WaitGroup
		for range 100 {
			wg.Add(1)

			go func() {
				defer wg.Done()

				bar.IncrementInProgress(1)
				bar.MoveInProgressToFinished(1)
			}()
		}
		wg.Wait()

		Expect(bar.InProgress).To(Equal(uint64(0)))
		Expect(bar.Finished).To(Equal(uint64(100)))
	})
})
