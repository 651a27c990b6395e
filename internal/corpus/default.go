package corpus

// Default returns the built-in four-size corpus: one short sentence, a short
// paragraph, a long paragraph and a multi-paragraph passage of mixed
// kanji, kana, Latin text and digits.
func Default() *Corpus {
	c, err := New(defaultItems())
	if err != nil {
		panic(err)
	}
	return c
}

func defaultItems() []Item {
	return []Item{
		{
			Name:         "small",
			ApproxTokens: 8,
			Text:         []byte("今朝は雨が降っていました。"),
		},
		{
			Name:         "medium",
			ApproxTokens: 45,
			Text: []byte("駅前の本屋で新しい料理の本を二冊買いました。" +
				"帰りにパン屋に寄って、焼きたてのクロワッサンを食べました。" +
				"週末はその本を見ながらカレーを作るつもりです。"),
		},
		{
			Name:         "large",
			ApproxTokens: 180,
			Text: []byte("私たちのチームは先月から新しい検索サービスの開発を始めました。" +
				"最初の二週間は要件の整理に使い、利用者へのインタビューを十回以上行いました。" +
				"その結果、検索結果の速さよりも、正確さと読みやすさが重視されていることが分かりました。" +
				"そこで設計を見直し、索引を作る処理と結果を並べる処理を分けることにしました。" +
				"索引の更新は夜間にまとめて行い、昼間は読み取り専用のデータだけを使います。" +
				"テスト環境では 1000 件の文書で平均 30 ミリ秒という結果が出ました。" +
				"来月からは社内の一部の部署で試験運用を始める予定です。" +
				"問題がなければ、秋には全社に公開したいと考えています。"),
		},
		{
			Name:         "very-large",
			ApproxTokens: 480,
			Text: []byte("図書館の歴史は古く、紀元前の時代から粘土板や巻物を集めた施設が存在していました。" +
				"中世になると修道院が写本を作り、知識を次の世代へ伝える役割を担いました。" +
				"印刷技術が広まると本の値段は大きく下がり、一般の人々も読書を楽しめるようになりました。" +
				"近代の公共図書館は、誰でも無料で本を借りられる場所として各地に作られました。" +
				"日本でも明治時代に最初の公共図書館が開かれ、その後全国に広がっていきました。" +
				"現在の図書館は本を貸すだけではありません。" +
				"インターネットの閲覧、古い新聞のデジタル化、子ども向けの読み聞かせ会など、" +
				"さまざまなサービスを提供しています。" +
				"また、地域の歴史資料を保存し、研究者や学生が自由に使えるようにしている図書館もあります。" +
				"最近では電子書籍の貸し出しも増えており、家にいながら本を借りることができます。" +
				"一方で、予算の削減や利用者の減少に悩む図書館も少なくありません。" +
				"そのため、カフェを併設したり、イベントスペースを設けたりして、" +
				"人が集まる場所としての魅力を高める工夫が続けられています。" +
				"ある市立図書館では、2019 年に改装してから来館者が 1.5 倍に増えました。" +
				"静かに本を読む場所と、会話をしながら作業できる場所を分けたことが好評だったそうです。" +
				"図書館は時代に合わせて形を変えながら、人と知識をつなぐ場所であり続けています。" +
				"これからも、紙の本とデジタルの情報の両方を扱う拠点として、" +
				"地域の暮らしを支えていくことが期待されています。"),
		},
	}
}
