package digest_test

import (
	"crypto/sha256"
	"math/bits"
	"testing/quick"

	"github.com/ardanlabs/powledger/foundation/blockchain/digest"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var conf = quick.Config{
	MaxCount: 256,
}

var _ = Describe("digest properties", func() {
	Context("when hashing arbitrary data", func() {
		It("should always produce 256 bits", func() {
			test := func(data []byte) bool {
				return len(digest.Sum(data)) == 32 && len(digest.Sum(data).Hex()) == 64
			}
			Expect(quick.Check(test, &conf)).ShouldNot(HaveOccurred())
		})

		It("should be deterministic", func() {
			test := func(data []byte) bool {
				return digest.Sum(data) == digest.Sum(append([]byte(nil), data...))
			}
			Expect(quick.Check(test, &conf)).ShouldNot(HaveOccurred())
		})

		It("should agree with the standard library", func() {
			test := func(data []byte) bool {
				return digest.Sum(data) == digest.Digest(sha256.Sum256(data))
			}
			Expect(quick.Check(test, &conf)).ShouldNot(HaveOccurred())
		})
	})

	Context("when a single input bit is flipped", func() {
		It("should change roughly half of the output bits", func() {
			var total, samples int

			test := func(data []byte, pos uint16) bool {
				if len(data) == 0 {
					return true
				}

				flipped := append([]byte(nil), data...)
				bit := int(pos) % (len(data) * 8)
				flipped[bit/8] ^= 1 << (bit % 8)

				a := digest.Sum(data)
				b := digest.Sum(flipped)
				if a == b {
					return false
				}

				for i := range a {
					total += bits.OnesCount8(a[i] ^ b[i])
				}
				samples++

				return true
			}
			Expect(quick.Check(test, &conf)).ShouldNot(HaveOccurred())

			if samples > 0 {
				avg := float64(total) / float64(samples)
				Expect(avg).Should(BeNumerically("~", 128, 16))
			}
		})
	})
})
