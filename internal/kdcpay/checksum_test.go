package kdcpay

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	testSecret = "s3cret"

	successCallback = "tix_action=payment_return&tix_payment_token=abc123&tix_payment_method=camptix_kdcpay" +
		"&status=success&orderId=abc123&responseCode=0&responseDescription=Transaction+Successful%21" +
		"&amount=500.00&trackId=TRK1001&pgId=PG77&bankId=BNK9&paidBy=NB"
	successChecksum = "3785313be4cff195feb89f57408b615398bf14de80426d1a8a5944d72d62d8f0"
)

func mustParse(t *testing.T, raw string) *Payload {
	t.Helper()
	return ParsePayload(raw)
}

func TestChecksumInput_Callback(t *testing.T) {
	p := mustParse(t, successCallback)

	assert.Equal(t,
		"'success''abc123''0''Transaction Successful''500.00''TRK1001''PG77''BNK9''NB'",
		ChecksumInput(p, RoleCallback))
	assert.Equal(t, successChecksum, Checksum(p, RoleCallback, testSecret))
}

func TestChecksum_IgnoresNonWhitelistedFields(t *testing.T) {
	p := mustParse(t, successCallback)
	want := Checksum(p, RoleCallback, testSecret)

	withExtra := mustParse(t, "utm_source=mail&"+successCallback+"&checksum=whatever&udf9=x")
	assert.Equal(t, want, Checksum(withExtra, RoleCallback, testSecret))

	moved := mustParse(t, "status=success&orderId=abc123&responseCode=0&responseDescription=Transaction+Successful%21"+
		"&tix_payment_method=camptix_kdcpay&amount=500.00&trackId=TRK1001&tix_action=payment_return"+
		"&pgId=PG77&bankId=BNK9&tix_payment_token=abc123&paidBy=NB")
	assert.Equal(t, want, Checksum(moved, RoleCallback, testSecret))
}

func TestChecksum_SensitiveToWhitelistedOrderAndValues(t *testing.T) {
	p := mustParse(t, successCallback)
	want := Checksum(p, RoleCallback, testSecret)

	swapped := mustParse(t, "orderId=abc123&status=success&responseCode=0&responseDescription=Transaction+Successful%21"+
		"&amount=500.00&trackId=TRK1001&pgId=PG77&bankId=BNK9&paidBy=NB")
	assert.NotEqual(t, want, Checksum(swapped, RoleCallback, testSecret))

	p.Set(FieldAmount, "5.00")
	assert.NotEqual(t, want, Checksum(p, RoleCallback, testSecret))
}

func TestChecksum_DependsOnSecretAndRole(t *testing.T) {
	p := mustParse(t, successCallback)

	assert.NotEqual(t, Checksum(p, RoleCallback, testSecret), Checksum(p, RoleCallback, "other"))
	assert.NotEqual(t, Checksum(p, RoleCallback, testSecret), Checksum(p, RoleCheckout, testSecret))
}

func TestChecksum_Deterministic(t *testing.T) {
	p := mustParse(t, successCallback)

	first := Checksum(p, RoleCallback, testSecret)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Checksum(p, RoleCallback, testSecret))
	}
	assert.Len(t, first, 64)
}

func TestChecksumInput_ReturnURLUsesURLSanitizer(t *testing.T) {
	p := NewPayload()
	p.Set("mid", "M:1")
	p.Set(FieldReturnURL, "https://x.org/?a=1&b=(2)#tix")

	assert.Equal(t, "'M1''https://x.org/?a=1&b=2#tix'", ChecksumInput(p, RoleCheckout))
}

func TestChecksumInput_EmptyWhenNothingWhitelisted(t *testing.T) {
	p := mustParse(t, "tix_action=payment_return&foo=bar")

	assert.Equal(t, "", ChecksumInput(p, RoleCallback))
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{
		"checkout": RoleCheckout,
		"Callback": RoleCallback,
		"return":   RoleCallback,
		" notify ": RoleCallback,
	} {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseRole("refund")
	assert.False(t, ok)
}
