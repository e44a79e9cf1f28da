package ledger_test

import (
	"github.com/intentswaps/swapd/ledger"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Leg ledger", func() {
	var legs ledger.Ledger

	BeforeEach(func() {
		legs = ledger.NewInMemLedger()
	})

	Context("when checking an unrecorded action", func() {
		It("should report the leg as unsettled", func() {
			txid, done, err := legs.Check(ledger.ActionPayoutCreator, 1)
			Expect(err).Should(BeNil())
			Expect(done).Should(BeFalse())
			Expect(txid).Should(BeEmpty())
		})
	})

	Context("when recording an action", func() {
		It("should return the recorded txid on later checks", func() {
			Expect(legs.Record(ledger.ActionPayoutResolver, 1, "txid-1")).Should(Succeed())

			txid, done, err := legs.Check(ledger.ActionPayoutResolver, 1)
			Expect(err).Should(BeNil())
			Expect(done).Should(BeTrue())
			Expect(txid).Should(Equal("txid-1"))
		})

		It("should keep actions of different orders apart", func() {
			Expect(legs.Record(ledger.ActionRefundCreator, 1, "txid-1")).Should(Succeed())

			_, done, err := legs.Check(ledger.ActionRefundCreator, 2)
			Expect(err).Should(BeNil())
			Expect(done).Should(BeFalse())
		})

		It("should keep different actions of one order apart", func() {
			Expect(legs.Record(ledger.ActionPayoutCreator, 1, "txid-1")).Should(Succeed())

			_, done, err := legs.Check(ledger.ActionRefundResolver, 1)
			Expect(err).Should(BeNil())
			Expect(done).Should(BeFalse())
		})
	})
})
