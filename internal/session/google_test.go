package session

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/teamideas/idea-portal/internal"
)

// testIdentityToken builds an unsigned JWT carrying the given claims, the
// same shape the Google sign-in widget hands the login endpoint.
func testIdentityToken(sub, email, name string) string {
	encode := func(v interface{}) string {
		raw, _ := json.Marshal(v)
		return base64.RawURLEncoding.EncodeToString(raw)
	}

	header := encode(map[string]string{"alg": "RS256", "typ": "JWT"})
	claims := map[string]string{}
	if sub != "" {
		claims["sub"] = sub
	}
	if email != "" {
		claims["email"] = email
	}
	if name != "" {
		claims["name"] = name
	}

	return fmt.Sprintf("%s.%s.%s", header, encode(claims), base64.RawURLEncoding.EncodeToString([]byte("sig")))
}

var _ = ginkgo.Describe("DecodeIdentityToken", func() {
	ginkgo.It("should extract subject, email and name", func() {
		user, err := DecodeIdentityToken(testIdentityToken("g-123", "ada@example.com", "Ada"))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.GoogleID).To(gomega.Equal("g-123"))
		gomega.Expect(user.Email).To(gomega.Equal("ada@example.com"))
		gomega.Expect(user.Name).To(gomega.Equal("Ada"))
	})

	ginkgo.It("should tolerate a missing name", func() {
		user, err := DecodeIdentityToken(testIdentityToken("g-123", "ada@example.com", ""))

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(user.Name).To(gomega.BeEmpty())
	})

	ginkgo.It("should reject tokens without a subject", func() {
		_, err := DecodeIdentityToken(testIdentityToken("", "ada@example.com", "Ada"))

		gomega.Expect(err).To(gomega.Equal(internal.ErrMalformedAssertion))
	})

	ginkgo.It("should reject tokens without an email", func() {
		_, err := DecodeIdentityToken(testIdentityToken("g-123", "", "Ada"))

		gomega.Expect(err).To(gomega.Equal(internal.ErrMalformedAssertion))
	})

	ginkgo.It("should reject strings that are not JWTs at all", func() {
		_, err := DecodeIdentityToken("definitely not a token")

		gomega.Expect(err).To(gomega.Equal(internal.ErrMalformedAssertion))
	})
})
