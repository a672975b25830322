// Package models defines the one domain entity shared by every layer of satseg.
//
// [FileDetails] describes an image by name, MIME type and raw bytes. The same shape is used
// for the satellite image read from local storage and for the mask returned by the
// segmentation service.
//
// In memory [FileDetails.Data] always holds raw bytes. On the wire (the service's JSON
// response, the CLI's JSON output) it is standard base64 text. The conversion lives in
// [EncodeData] and [DecodeData] and is lossless for any byte sequence.
//
// Decoding fails closed: malformed base64, missing fields or an empty payload return an error
// wrapping [shared.ErrDecode] instead of producing partial data.
package models
