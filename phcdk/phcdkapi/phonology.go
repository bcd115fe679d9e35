package phcdkapi

// phonologyHandlerSource is the inline source of the phonology validation
// function. It checks submitted words against the owning language's syllable
// pattern and records violations, using psycopg2 and regex from the
// dependency layer.
const phonologyHandlerSource = `import json
import os

import boto3
import psycopg2
import regex


def _connect():
    secret = json.loads(
        boto3.client("secretsmanager")
        .get_secret_value(SecretId=os.environ["SECRET_ARN"])["SecretString"]
    )
    return psycopg2.connect(
        host=secret["host"],
        port=secret.get("port", 5432),
        dbname=secret.get("dbname", secret.get("database")),
        user=secret["username"],
        password=secret["password"],
        sslmode="require",
    )


def _response(status, body):
    return {
        "statusCode": status,
        "headers": {
            "Content-Type": "application/json",
            "Access-Control-Allow-Origin": "*",
        },
        "body": json.dumps(body, default=str),
    }


def handler(event, context):
    body = json.loads(event.get("body") or "{}")
    word_id = body.get("word_id")
    if not word_id:
        return _response(400, {"error": "word_id is required"})

    conn = _connect()
    try:
        with conn.cursor() as cur:
            cur.execute(
                """
                SELECT w.word, w.ipa, l.syllables, l.rules
                FROM app_8b514_words w
                JOIN app_8b514_languages l ON w.language_id = l.id
                WHERE w.id = %s
                """,
                (word_id,),
            )
            row = cur.fetchone()
            if row is None:
                return _response(404, {"error": "Word not found"})

            word, ipa, syllables, rules = row
            violations = []

            pattern = syllables.replace("C", r"\p{L}").replace("V", r"[aeiou]")
            if not regex.fullmatch(f"(?:{pattern})+", word, regex.IGNORECASE):
                violations.append(
                    ("syllable_structure", f"word does not match pattern {syllables}")
                )

            for v_type, description in violations:
                cur.execute(
                    """
                    INSERT INTO app_8b514_phonological_violations
                        (word_id, violation_type, description, severity)
                    VALUES (%s, %s, %s, 'warning')
                    """,
                    (word_id, v_type, description),
                )
            conn.commit()

            return _response(
                200,
                {
                    "word": word,
                    "ipa": ipa,
                    "valid": not violations,
                    "violations": [
                        {"type": t, "description": d} for t, d in violations
                    ],
                },
            )
    finally:
        conn.close()
`
