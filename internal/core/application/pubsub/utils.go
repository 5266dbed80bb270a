package pubsub

import "github.com/tdex-network/arkd/internal/core/domain"

func getRoundPayload(round domain.Round) map[string]interface{} {
	return map[string]interface{}{
		"height":     round.Height,
		"session_id": round.SessionId,
		"num_vtxos":  round.NumVtxos,
	}
}

func getVtxosPayload(vtxos []domain.Vtxo) []map[string]interface{} {
	payload := make([]map[string]interface{}, 0, len(vtxos))
	for _, v := range vtxos {
		payload = append(payload, map[string]interface{}{
			"txid":    v.Txid,
			"vout":    v.VOut,
			"amount":  v.Amount,
			"locator": v.Locator,
		})
	}
	return payload
}

func getOutputPayload(output domain.Output) map[string]interface{} {
	return map[string]interface{}{
		"locator": output.Locator,
		"amount":  output.Amount,
	}
}

func getAssetPayload(asset domain.Asset) map[string]interface{} {
	return map[string]interface{}{
		"id":         asset.Id,
		"owner_key":  asset.OwnerKey,
		"payload":    asset.Identity.Payload,
		"generation": asset.Identity.Generation,
		"cooldown":   asset.Identity.Cooldown,
		"ancestors":  asset.Identity.Ancestors,
	}
}
