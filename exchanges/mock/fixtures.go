package mock

// Test credentials accepted by a server created with DefaultConfig
const (
	TestAPIKey    = "mock-api-key"
	TestAPISecret = "kQH5HW/8p1uGOVjbgWA7FunAmGO8lsSUXNsu3eow76sz84Q18fWxnyRzBHCd3pd5nE9qa99HAZtuZuj6F1huXg=="
	TestOTPSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"
)

// Default response bodies
const (
	TickerResponse = `{"error":[],"result":{"XXBTZUSD":{` +
		`"a":["61285.10000","1","1.000"],` +
		`"b":["61285.00000","2","2.000"],` +
		`"c":["61285.10000","0.00100000"],` +
		`"v":["1456.21563841","3824.54930211"],` +
		`"p":["61011.08476","60778.52148"],` +
		`"t":[12853,36171],` +
		`"l":["60206.70000","59700.00000"],` +
		`"h":["61750.00000","61750.00000"],` +
		`"o":"60548.40000"}}}`

	OpenOrdersResponse = `{"error":[],"result":{"open":{` +
		`"OQCLML-BW3P3-BUCMWZ":{"refid":null,"userref":0,"status":"open","opentm":1688666559.8974,` +
		`"starttm":0,"expiretm":0,"descr":{"pair":"XBTUSD","type":"buy","ordertype":"limit",` +
		`"price":"30010.0","price2":"0","leverage":"none","order":"buy 1.25000000 XBTUSD @ limit 30010.0",` +
		`"close":""},"vol":"1.25000000","vol_exec":"0.00000000","cost":"0.00000","fee":"0.00000",` +
		`"price":"0.00000","stopprice":"0.00000","limitprice":"0.00000","misc":"","oflags":"fciq"},` +
		`"OB5VMB-B4U2U-DK2WRW":{"refid":null,"userref":120,"status":"open","opentm":1688665899.5699,` +
		`"starttm":0,"expiretm":0,"descr":{"pair":"XBTUSD","type":"buy","ordertype":"limit",` +
		`"price":"14500.0","price2":"0","leverage":"5:1","order":"buy 0.27500000 XBTUSD @ limit 14500.0 with 5:1 leverage",` +
		`"close":""},"vol":"0.27500000","vol_exec":"0.00000000","cost":"0.00000","fee":"0.00000",` +
		`"price":"0.00000","stopprice":"0.00000","limitprice":"0.00000","misc":"","oflags":"fciq"}}}}`
)

// Kraken error strings returned by the server
const (
	ErrInvalidKey       = "EAPI:Invalid key"
	ErrInvalidSignature = "EAPI:Invalid signature"
	ErrInvalidNonce     = "EAPI:Invalid nonce"
	ErrInvalidOTP       = "EGeneral:Invalid arguments:otp"
	ErrInvalidArguments = "EGeneral:Invalid arguments"
	ErrUnknownMethod    = "EGeneral:Unknown method"
	ErrUnknownPair      = "EQuery:Unknown asset pair"
)
