package tmap

import "go.mau.fi/mtproto-core/mt"

// MT is the registry of every constructor this module's mt package knows,
// used by mtproto's logging of unknown bodies.
var MT = New(map[uint32]string{
	mt.IDResPQ:              "resPQ",
	mt.IDReqPqMulti:         "req_pq_multi",
	mt.IDPQInnerDataDC:      "p_q_inner_data_dc",
	mt.IDReqDHParams:        "req_DH_params",
	mt.IDServerDHParamsFail: "server_DH_params_fail",
	mt.IDServerDHParamsOk:   "server_DH_params_ok",
	mt.IDServerDHInnerData:  "server_DH_inner_data",
	mt.IDClientDHInnerData:  "client_DH_inner_data",
	mt.IDSetClientDHParams:  "set_client_DH_params",
	mt.IDDHGenOk:            "dh_gen_ok",
	mt.IDDHGenRetry:         "dh_gen_retry",
	mt.IDDHGenFail:          "dh_gen_fail",
	mt.IDRPCResult:          "rpc_result",
	mt.IDRPCError:           "rpc_error",
	mt.IDMsgContainer:       "msg_container",
	mt.IDMsgsAck:            "msgs_ack",
	mt.IDBadMsgNotification: "bad_msg_notification",
	mt.IDBadServerSalt:      "bad_server_salt",
	mt.IDNewSessionCreated:  "new_session_created",
	mt.IDPing:               "ping",
	mt.IDPong:               "pong",
	mt.IDGzipPacked:         "gzip_packed",
	mt.IDFutureSalt:         "future_salt",
	mt.IDFutureSalts:        "future_salts",
})
