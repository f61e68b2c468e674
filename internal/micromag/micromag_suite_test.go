package micromag_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestMicromag(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Micromag Suite")
}
